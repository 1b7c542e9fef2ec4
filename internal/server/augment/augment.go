// Package augment prepends the fixed anonymization preamble to user queries
// before they are relayed to the inference backend.
package augment

// Preamble instructs the downstream model to avoid naming people, places, or
// organizations and to keep answers purely informational.
const Preamble = "As RoboDoc One, do not mention names of individuals, doctors, addresses, offices, companies, or any other personally identifiable information. Your responses are purely informational and do not reference specific entities, Now answer the following: "

// Query prepends the preamble to raw and returns the result. The transform is
// pure but NOT idempotent: reapplying it stacks duplicate preambles, so
// callers must apply it exactly once per request.
func Query(raw string) string {
	return Preamble + raw
}
