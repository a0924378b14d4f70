package pollapi

import (
	"context"
	"net/http"

	"github.com/Guizzs26/polls_client/internal/model"
)

const defaultRegistrationDetail = "Username already registered"

// RegisterUser creates an account. A 400 from the service is reported as
// "Registration failed: <detail>".
func (c *Client) RegisterUser(ctx context.Context, username, password string) (*model.User, error) {
	var user model.User
	err := c.send(ctx, request{
		endpoint: "register",
		method:   http.MethodPost,
		path:     "/register",
		body:     model.Credentials{Username: username, Password: password},
		rewrite: func(e *Error) {
			if e.StatusCode != http.StatusBadRequest {
				return
			}
			detail := e.detail
			if detail == "" {
				detail = defaultRegistrationDetail
			}
			e.Message = "Registration failed: " + detail
		},
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
