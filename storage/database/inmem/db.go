// Package inmemdb provides map-backed repositories used in tests and local
// development without a running database.
package inmemdb

import (
	"sync"

	"github.com/chapa-studio/chapa/core/template"
	"github.com/chapa-studio/chapa/core/user"
)

type DB struct {
	user     *userTable
	template *templateTable
}

func NewDB() *DB {
	return &DB{
		user:     &userTable{table: make(map[string]*user.User)},
		template: &templateTable{table: make(map[string]*template.Template)},
	}
}

type userTable struct {
	mutex sync.RWMutex
	table map[string]*user.User
}

type templateTable struct {
	mutex sync.RWMutex
	table map[string]*template.Template
}
