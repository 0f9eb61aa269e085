package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// UserInfo is the identity of an authenticated user plus its session token.
type UserInfo struct {
	Token       string    `json:"token" yaml:"token"`
	UserGUID    string    `json:"userGuid" yaml:"userGuid"`
	UserID      string    `json:"userId" yaml:"userId"`
	DisplayName string    `json:"displayName" yaml:"displayName"`
	Email       string    `json:"email,omitempty" yaml:"email,omitempty"`
	Mobile      string    `json:"mobile,omitempty" yaml:"mobile,omitempty"`
	MywizEmail  string    `json:"mywizEmail,omitempty" yaml:"mywizEmail,omitempty"`
	EmailVerify string    `json:"emailVerify,omitempty" yaml:"emailVerify,omitempty"`
	Created     time.Time `json:"created" yaml:"created"`
	VIP         bool      `json:"vip" yaml:"vip"`
	VIPDate     time.Time `json:"vipDate,omitempty" yaml:"vipDate,omitempty"`

	// Personal knowledge base.
	KbGUID   string `json:"kbGuid" yaml:"kbGuid"`
	KbServer string `json:"kbServer" yaml:"kbServer"`
	KbType   string `json:"kbType,omitempty" yaml:"kbType,omitempty"`
}

// Clone returns a copy of the user info.
func (u *UserInfo) Clone() *UserInfo {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// userWire is the account server's user object.
type userWire struct {
	UserGUID    string `json:"userGuid"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Mobile      string `json:"mobile"`
	MywizEmail  string `json:"mywizEmail"`
	EmailVerify string `json:"emailVerify"`
	Created     int64  `json:"created"`
	VIP         bool   `json:"vip"`
	VIPDate     int64  `json:"vipDate"`
}

// loginWire is the result object of login and user info commands.
type loginWire struct {
	Token      string    `json:"token"`
	KbGUID     string    `json:"kbGuid"`
	KbServer   string    `json:"kbServer"`
	KbType     string    `json:"kbType"`
	MywizEmail string    `json:"mywizEmail"`
	User       *userWire `json:"user"`
}

// ParseUserInfo decodes a login or user info result object.
//
// Login nests the identity under "user"; the user info command may return
// the identity fields at the top level. Both shapes are accepted.
func ParseUserInfo(raw json.RawMessage) (*UserInfo, error) {
	var lw loginWire
	if err := json.Unmarshal(raw, &lw); err != nil {
		return nil, ErrMalformedResponse.WithDetails("user info").WithCause(err)
	}

	uw := lw.User
	if uw == nil {
		uw = &userWire{}
		if err := json.Unmarshal(raw, uw); err != nil {
			return nil, ErrMalformedResponse.WithDetails("user info").WithCause(err)
		}
	}

	info := &UserInfo{
		Token:       lw.Token,
		UserGUID:    uw.UserGUID,
		UserID:      uw.UserID,
		DisplayName: uw.DisplayName,
		Email:       uw.Email,
		Mobile:      uw.Mobile,
		MywizEmail:  uw.MywizEmail,
		EmailVerify: uw.EmailVerify,
		Created:     fromMillis(uw.Created),
		VIP:         uw.VIP,
		VIPDate:     fromMillis(uw.VIPDate),
		KbGUID:      lw.KbGUID,
		KbServer:    lw.KbServer,
		KbType:      lw.KbType,
	}
	if info.MywizEmail == "" {
		info.MywizEmail = lw.MywizEmail
	}
	return info, nil
}

// String renders the user info as INI-style key/value lines.
func (u *UserInfo) String() string {
	if u == nil {
		return ""
	}
	return fmt.Sprintf("[user]\nuserGuid = %s\nuserId = %s\ndisplayName = %s\nemail = %s\n\n[kb]\nkbGuid = %s\nkbServer = %s\n",
		u.UserGUID, u.UserID, u.DisplayName, u.Email, u.KbGUID, u.KbServer)
}

// fromMillis converts a server epoch-milliseconds stamp; zero stays zero.
func fromMillis(ms int64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
