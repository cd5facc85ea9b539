package domain

import "errors"

var (
	ErrInvalidUserID      = errors.New("invalid user id")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRoomID      = errors.New("invalid room id")
	ErrMessageNotSaved    = errors.New("message not saved")
)
