package userservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/sushihentaime/blogapi/internal/common"
)

var (
	ErrAuthenticationFailure = errors.New("invalid credentials")
)

func NewUserService(db *sql.DB, mb common.MessageProducer, c *common.Cache) *UserService {
	return &UserService{
		m:  newUserModel(db),
		mb: mb,
		c:  c,
	}
}

// RegisterUser creates a new user account, issues a bearer token and
// publishes a user.signed_up event for the welcome email consumer.
func (s *UserService) RegisterUser(ctx context.Context, firstName, lastName, email, password string) (*User, *Token, error) {
	v := common.NewValidator()
	validateName(v, firstName, "first_name")
	validateName(v, lastName, "last_name")
	validateEmail(v, email)
	validatePassword(v, password)
	if !v.Valid() {
		return nil, nil, v.ValidationError()
	}

	u := User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
	}

	err := u.Password.set(password)
	if err != nil {
		return nil, nil, err
	}

	err = s.m.insertUser(ctx, &u)
	if err != nil {
		return nil, nil, err
	}

	token, err := s.m.createToken(ctx, u.ID, AccessTokenTime)
	if err != nil {
		return nil, nil, err
	}

	data := struct {
		Email string
		Name  string
	}{
		Email: u.Email,
		Name:  u.FirstName,
	}

	eventData, err := json.Marshal(data)
	if err != nil {
		return nil, nil, err
	}

	err = s.mb.Publish(ctx, eventData, common.UserSignedUpKey, common.UserExchange)
	if err != nil {
		return nil, nil, err
	}

	return &u, token, nil
}

// LoginUser verifies the credentials and issues a fresh bearer token. Unknown
// email and wrong password both surface as ErrAuthenticationFailure.
func (s *UserService) LoginUser(ctx context.Context, email, password string) (*User, *Token, error) {
	v := common.NewValidator()
	validateEmail(v, email)
	validatePassword(v, password)
	if !v.Valid() {
		return nil, nil, v.ValidationError()
	}

	user, err := s.m.getUserByEmail(ctx, email)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, nil, ErrAuthenticationFailure
		default:
			return nil, nil, err
		}
	}

	ok, err := user.Password.compare(password)
	if err != nil {
		return nil, nil, err
	}

	if !ok {
		return nil, nil, ErrAuthenticationFailure
	}

	token, err := s.m.createToken(ctx, user.ID, AccessTokenTime)
	if err != nil {
		return nil, nil, err
	}

	return user, token, nil
}

// GetUserByAccessToken resolves a bearer token to a user. Hits are cached in
// process keyed by the token hash.
func (s *UserService) GetUserByAccessToken(ctx context.Context, token string) (*User, error) {
	v := common.NewValidator()
	validateToken(v, token)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	hash := hashToken(token)

	if s.c != nil {
		if cached, ok := s.c.Get(common.CacheKeyUserByToken(hash)); ok {
			return cached.(*User), nil
		}
	}

	user, err := s.m.getUserByTokenHash(ctx, hash)
	if err != nil {
		return nil, err
	}

	if s.c != nil {
		s.c.Set(common.CacheKeyUserByToken(hash), user, 5*time.Minute)
	}

	return user, nil
}

// LogoutUser deletes all of the user's bearer tokens.
func (s *UserService) LogoutUser(ctx context.Context, userID int) error {
	v := common.NewValidator()
	validateInt(v, userID, "user_id")
	if !v.Valid() {
		return v.ValidationError()
	}

	err := s.m.deleteTokensForUser(ctx, userID)
	if err != nil {
		return err
	}

	// cached lookups are keyed by token hash, so the only way to drop every
	// token of this user is to clear the cache
	if s.c != nil {
		s.c.Flush()
	}

	return nil
}

func (u *User) IsAnonymous() bool {
	return u == &AnonymousUser
}
