package model

import "github.com/ginmardoa-gif/literate-palm-tree/cli/console/types"

type User struct {
	ID       int32      `json:"id"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Role     types.Role `json:"role"`
}
