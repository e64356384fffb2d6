package di

// PkgNames defines the well-known keys the test host registers.
type PkgNames struct {
	Config     string
	Logger     string
	HTTPServer string
}

// Pkg contains the well-known component names.
var Pkg = PkgNames{
	Config:     "config",
	Logger:     "logger",
	HTTPServer: "http_server",
}
