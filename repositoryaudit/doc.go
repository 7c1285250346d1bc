// Package repositoryaudit applies audit stamping around persistence calls.
//
// An Interceptor is built once at composition time from an audit.Registry.
// Before each classified call it reads the actor from the context, stamps
// the first argument and hands control to the real operation unchanged:
//
//	interceptor := repositoryaudit.NewInterceptor(audit.DefaultRegistry())
//	dishes := repositoryaudit.New[*menu.Dish](baseDishRepository, interceptor)
//
//	ctx = audit.WithActor(ctx, "42")
//	dish, err := dishes.Create(ctx, &menu.Dish{Name: "Mapo Tofu"})
//	// dish.CreatedBy == "42", dish.CreatedAt == now
//
// Stamping problems are logged and reported to hooks. They never change the
// result or error of the wrapped operation, and the wrapped operation runs
// exactly once.
//
// Code that does not go through a go-repository-bun repository can use Wrap
// or Around:
//
//	insert := repositoryaudit.Around(interceptor, "cart.Insert", store.Insert)
package repositoryaudit
