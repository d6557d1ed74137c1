package util

import (
	"gopkg.in/ini.v1"
)

// Ini loads the unnamed section of an ini file into a map.
func Ini(filename string) (map[string]string, error) {
	cfg, err := ini.Load(filename)
	if err != nil {
		return nil, err
	}
	return cfg.Section("").KeysHash(), nil
}
