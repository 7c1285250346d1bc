// Package audit stamps the four audit fields of persisted entities.
//
// # Overview
//
// Entities opt in to auditing by exposing one or more of the slot setters:
//
//   - CreatedBySetter / CreatedAtSetter: written on CREATE operations only
//   - UpdatedBySetter / UpdatedAtSetter: written on CREATE and UPDATE operations
//
// The simplest way to opt in is embedding Fields:
//
//	type Dish struct {
//		bun.BaseModel `bun:"table:dishes"`
//		ID   uuid.UUID `bun:"id,pk,type:uuid"`
//		Name string    `bun:"name"`
//		audit.Fields
//	}
//
// An entity may expose any subset of the slots. Missing slots are skipped
// silently, so a cart line that only records its creation time works the same
// way as a fully audited aggregate.
//
// # Acting identity
//
// The acting user travels on the context:
//
//	ctx = audit.WithActor(ctx, "42")
//	actor := audit.CurrentActor(ctx) // "42"
//
// There is no process-wide state. Two requests served concurrently carry
// distinct contexts and never observe each other's actor.
//
// # Classification
//
// A Registry maps operation names to CREATE or UPDATE. It is built once at
// composition time and only read afterwards:
//
//	registry := audit.DefaultRegistry().
//		Register("cart.Insert", audit.OperationCreate).
//		Skip("cart_item.Update")
//
// Unregistered operations are never audited.
package audit
