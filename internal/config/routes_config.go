package config

type RoutesConfig interface {
	GetLoginRoute() string
	GetLandingRoute() string
}

type Routes struct{}

var _ RoutesConfig = Routes{}

func (Routes) GetLoginRoute() string {
	return GetEnv("LOGIN_ROUTE", "Login")
}

func (Routes) GetLandingRoute() string {
	return GetEnv("LANDING_ROUTE", "Dashboard")
}
