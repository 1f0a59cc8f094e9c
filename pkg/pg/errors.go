package pg

import "errors"

var (
	ErrParseConfig       = errors.New("pg: failed to parse connection config")
	ErrConnectionFailed  = errors.New("pg: failed to open database connection")
	ErrHealthcheckFailed = errors.New("pg: healthcheck failed")
)
