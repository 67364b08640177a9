package response

import "github.com/ginmardoa-gif/literate-palm-tree/cli/console/model"

type AuthCheck struct {
	Authenticated bool        `json:"authenticated"`
	User          *model.User `json:"user,omitempty"`
}

type Login struct {
	Message string      `json:"message"`
	User    *model.User `json:"user,omitempty"`
}
