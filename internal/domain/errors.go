package domain

import "errors"

var (
	ErrUpstreamNetwork   = errors.New("upstream unreachable")
	ErrUpstreamStatus    = errors.New("upstream returned an error status")
	ErrUpstreamParse     = errors.New("upstream body is not valid json")
	ErrUpstreamTooLarge  = errors.New("upstream body exceeds size limit")
	ErrInvalidCounter    = errors.New("invalid counter config")
	ErrUnsupportedPolicy = errors.New("unsupported summary policy")
)
