package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/robodoc-one/gateway/internal/common"
	"github.com/robodoc-one/gateway/internal/server/augment"
)

// maxUploadBytes caps in-memory buffering of multipart image uploads.
const maxUploadBytes = 32 << 20

// envelope is the uniform response body: success plus message/token/reply/
// prediction on the happy path, error plus details on failure.
type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message,omitempty"`
	Token      string          `json:"token,omitempty"`
	Reply      string          `json:"reply,omitempty"`
	Prediction json.RawMessage `json:"prediction,omitempty"`
	Error      string          `json:"error,omitempty"`
	Details    string          `json:"details,omitempty"`
}

// NewHandler wires the route table. The disease-predict routes are mounted
// without the auth middleware, matching the shipped route wiring; /api/hit
// requires a bearer token.
func NewHandler(deps Deps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /auth/register", handleRegister(deps))
	mux.HandleFunc("POST /auth/login", handleLogin(deps))

	mux.Handle("POST /api/hit", requireAuth(deps, http.HandlerFunc(handleHit(deps))))

	predict := handlePredict(deps)
	mux.HandleFunc("POST /diseases/chest-predict", predict)
	mux.HandleFunc("POST /diseases/pneumonia-predict", predict)
	mux.HandleFunc("POST /diseases/edema-predict", predict)

	var h http.Handler = mux
	h = corsMiddleware(h)
	h = requestLogger(deps.Logger, h)
	return h
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func handleRegister(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeFailure(w, http.StatusBadRequest, "User registration failed", "invalid request body")
			return
		}

		_, token, err := deps.Auth.Register(r.Context(), req.Email, req.Password)
		if err != nil {
			// Duplicate email is deliberately indistinguishable from other
			// registration failures in the response body.
			deps.Logger.Warn(r.Context(), "registration failed", "error", err.Error())
			writeFailure(w, http.StatusBadRequest, "User registration failed", "")
			return
		}

		writeJSON(w, http.StatusCreated, envelope{
			Success: true,
			Message: "User registered successfully",
			Token:   token,
		})
	}
}

func handleLogin(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeFailure(w, http.StatusBadRequest, "Login failed", "invalid request body")
			return
		}

		token, err := deps.Auth.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, common.ErrInvalidCredentials) {
				writeFailure(w, http.StatusUnauthorized, "Invalid credentials", "")
				return
			}
			writeFailure(w, http.StatusInternalServerError, "Login failed", "")
			return
		}

		writeJSON(w, http.StatusOK, envelope{Success: true, Token: token})
	}
}

// hitRequest carries the chat relay body. UserQuery and PersonalizedPlan are
// accepted but do not branch relay behavior; both paths send the same
// augmented text.
type hitRequest struct {
	UserQuery        bool   `json:"userQuery"`
	PersonalizedPlan bool   `json:"personalizedPlan"`
	QueryData        string `json:"queryData"`
	Language         string `json:"language"`
}

func handleHit(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req hitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeFailure(w, http.StatusBadRequest, "Query processing failed", "invalid request body")
			return
		}
		if req.QueryData == "" {
			writeFailure(w, http.StatusBadRequest, "Query processing failed", "queryData must be a non-empty string")
			return
		}

		// Applied exactly once: the augmenter stacks preambles on reapplication.
		augmented := augment.Query(req.QueryData)

		reply, err := deps.Relay.Chat(r.Context(), augmented, req.Language)
		if err != nil {
			writeFailure(w, relayStatus(err), "Query processing failed", err.Error())
			return
		}

		writeJSON(w, http.StatusCreated, envelope{
			Success: true,
			Message: "Query processed",
			Reply:   reply,
		})
	}
}

func handlePredict(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeFailure(w, http.StatusBadRequest, "Image processing failed", "No file uploaded")
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			writeFailure(w, http.StatusBadRequest, "Image processing failed", "No file uploaded")
			return
		}
		defer file.Close()

		fileBytes, err := io.ReadAll(file)
		if err != nil {
			writeFailure(w, http.StatusBadRequest, "Image processing failed", "could not read uploaded file")
			return
		}

		prediction, err := deps.Relay.Predict(r.Context(), fileBytes, header.Filename, header.Header.Get("Content-Type"))
		if err != nil {
			writeFailure(w, relayStatus(err), "Image processing failed", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, envelope{
			Success:    true,
			Message:    "Image processed successfully",
			Prediction: prediction,
		})
	}
}

// relayStatus maps relay errors onto response statuses: invalid input is the
// client's fault, a timed-out backend is a gateway timeout, anything else
// from the backend is a bad gateway.
func relayStatus(err error) int {
	switch {
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, common.ErrRelay):
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeFailure(w http.ResponseWriter, status int, errTag, details string) {
	writeJSON(w, status, envelope{Success: false, Error: errTag, Details: details})
}
