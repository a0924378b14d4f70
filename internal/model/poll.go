package model

type PollOption struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// Poll is one entry of GET /polls.
type Poll struct {
	ID        int          `json:"id"`
	Question  string       `json:"question"`
	Options   []PollOption `json:"options,omitempty"`
	CreatedAt string       `json:"created_at,omitempty"`
}

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
