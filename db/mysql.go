//go:build !no_mysql && !no_db
// +build !no_mysql,!no_db

package db

import _ "github.com/jinzhu/gorm/dialects/mysql" // nolint: golint

func init() {
	EnabledDrivers = append(EnabledDrivers, "mysql")
}
