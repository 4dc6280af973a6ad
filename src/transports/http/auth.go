package http

// Auth is implemented by the supported authentication schemes.
type Auth interface {
	AuthType() string
}

// ApiKeyAuth sends a static key in a header, query parameter or cookie.
type ApiKeyAuth struct {
	APIKey   string `json:"api_key" yaml:"api_key"`
	VarName  string `json:"var_name" yaml:"var_name"`
	Location string `json:"location" yaml:"location"` // header (default), query or cookie
}

func (*ApiKeyAuth) AuthType() string { return "api_key" }

type BasicAuth struct {
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
}

func (*BasicAuth) AuthType() string { return "basic" }

// BearerAuth sends an OAuth access token.
type BearerAuth struct {
	Token string `json:"token" yaml:"token"`
}

func (*BearerAuth) AuthType() string { return "bearer" }
