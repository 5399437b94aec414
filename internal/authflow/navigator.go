package authflow

// Route is a logical destination in the application
type Route string

const (
	RouteDashboard      Route = "/dashboard"
	RouteLogin          Route = "/login"
	RouteRegister       Route = "/register"
	RouteForgotPassword Route = "/forgot-password"
)

// Navigator moves the user to a route
type Navigator interface {
	Navigate(route Route)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(Route)

func (f NavigatorFunc) Navigate(route Route) {
	f(route)
}
