package domain

import "strconv"

// Identity is who a connection or request acts as. It is derived once from
// the bearer token and never changes for the lifetime of a connection.
type Identity struct {
	UserID      int64  `json:"userId"`
	DisplayName string `json:"displayName"`
}

func (i Identity) String() string {
	return strconv.FormatInt(i.UserID, 10) + "/" + i.DisplayName
}
