package config

import (
	_ "go.uber.org/mock/gomock"
)

//go:generate go run go.uber.org/mock/mockgen -package mocks -destination mocks/mock_config_unmarshaler.go github.com/kasuboski/simulcast/config ConfigUnmarshaler
