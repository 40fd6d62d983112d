package userservice

import (
	"database/sql"
	"time"

	"github.com/sushihentaime/blogapi/internal/common"
)

const (
	// AccessTokenTime is how long an issued bearer token stays valid.
	AccessTokenTime time.Duration = 7 * 24 * time.Hour
)

var (
	AnonymousUser = User{}
)

type UserService struct {
	m  *DBModel
	mb common.MessageProducer
	c  *common.Cache
}

type DBModel struct {
	db *sql.DB
}

type User struct {
	ID        int       `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Password  Password  `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"-"`
}

type Password struct {
	Plain string `json:"-"`
	hash  []byte `json:"-"`
}

type Token struct {
	Plain  string    `json:"token"`
	Hash   []byte    `json:"-"`
	UserID int       `json:"-"`
	Expiry time.Time `json:"expiry"`
}
