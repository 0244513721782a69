package transport

// Middleware decorates a Decider. Transport concerns such as logging and
// panic recovery are middleware; the pipeline itself never sees them.
type Middleware func(Decider) Decider

// Chain composes middleware so that the first argument ends up outermost:
// Chain(a, b, c)(d) is a(b(c(d))).
func Chain(middlewares ...Middleware) Middleware {
	return func(next Decider) Decider {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
