package model

// AccessCode gates which class section a team belongs to. Codes are created
// by administrators and are read-only to the game; a code is only usable
// while Active.
type AccessCode struct {
	Code    string `json:"code"`
	Section string `json:"section"`
	Active  bool   `json:"active"`
}

// AdminUser is a dashboard account. Credentials are a trivial lookup, not a
// hardened auth system; passwords are stored as bcrypt hashes.
type AdminUser struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
	Active       bool   `json:"active"`
}
