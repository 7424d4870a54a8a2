package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// UserID принимает идентификатор пользователя как строкой, так и числом
type UserID string

func (u *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*u = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*u = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("user_id должен быть строкой или числом")
	}
	*u = UserID(n.String())
	return nil
}

type CommandRequest struct {
	UserID  UserID   `json:"user_id"`
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
	// строка команды целиком, например "/add купить хлеб"
	Text string `json:"text,omitempty"`
}

// Split возвращает команду и аргументы, разбирая Text, если Command не задана
func (r CommandRequest) Split() (string, []string) {
	if r.Command != "" {
		return r.Command, r.Args
	}
	fields := strings.Fields(r.Text)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}

type CommandResponse struct {
	Reply string `json:"reply"`
	Code  string `json:"code,omitempty"`
}
