package model

// API envelope: code 0 on success, the HTTP status code on failure.
// Success payloads flatten their fields next to code, matching the
// contract the frontend consumes.

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

type SimpleResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

type AuthResponse struct {
	Code         int    `json:"code"`
	Message      string `json:"message,omitempty"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken,omitempty"`
	UserID       int64  `json:"userId"`
	Username     string `json:"username"`
}

type MeResponse struct {
	Code     int    `json:"code"`
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

type CreateRecordResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
	ID      int64  `json:"id"`
}

type RecordListResponse struct {
	Code  int      `json:"code"`
	List  []Record `json:"list"`
	Total int      `json:"total"`
}

type CategoryListResponse struct {
	Code int      `json:"code"`
	List []string `json:"list"`
}

type SummaryResponse struct {
	Code int `json:"code"`
	Summary
}

type HealthResponse struct {
	OK bool `json:"ok"`
}
