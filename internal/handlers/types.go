package handlers

import (
	"time"
)

// EntryPayload is the wire form of a registry entry.
type EntryPayload struct {
	ID         string    `doc:"Entry id"             json:"id"`
	ShortCode  string    `doc:"The short code"       json:"shortCode"                example:"V1StGXR8_Z"`
	ShortURL   string    `doc:"The full short URL"   json:"shortUrl"                 example:"http://localhost:8888/V1StGXR8_Z"`
	Target     string    `doc:"The target URL"       json:"originalUrl"              example:"https://example.com/very/long/path"`
	Visibility string    `doc:"public or private"    json:"visibility"`
	CreatedAt  time.Time `doc:"Creation time"        json:"createdAt"`
}

// StatsPayload is the wire form of an aggregated usage row.
type StatsPayload struct {
	ID             string `json:"id"`
	ShortCode      string `json:"shortCode"`
	Target         string `json:"originalUrl"`
	OwnerID        string `json:"createdBy"`
	Visibility     string `json:"visibility"`
	TotalClicks    int64  `json:"totalClicks"`
	UniqueVisitors int64  `json:"uniqueVisitors"`
}

// PaginationPayload describes the page position within the full result set.
type PaginationPayload struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalRecords int64 `json:"totalRecords"`
	Limit        int   `json:"limit"`
}

// CreateEntryRequest is the request body for shortening a URL.
type CreateEntryRequest struct {
	Body struct {
		OriginalURL string `doc:"The URL to shorten" example:"https://example.com/very/long/path" json:"originalUrl"`
	}
}

// CreateEntryResponse is the response for a shorten request. Status is 201
// for a new entry and 200 when the target was already shortened.
type CreateEntryResponse struct {
	Status int
	Body   struct {
		Entry   EntryPayload `json:"entry"`
		Message string       `json:"message"`
	}
}

// ListEntriesRequest asks for one page of the caller's entries.
type ListEntriesRequest struct {
	Page  int `default:"1"  doc:"1-based page"     minimum:"1" query:"page"`
	Limit int `default:"10" doc:"Entries per page" minimum:"1" query:"limit"`
}

// ListEntriesResponse is one page of usage rows for the caller's entries.
type ListEntriesResponse struct {
	Body struct {
		Urls       []StatsPayload    `json:"urls"`
		Pagination PaginationPayload `json:"pagination"`
	}
}

// EntryStatsRequest fetches usage statistics for one entry.
type EntryStatsRequest struct {
	ID string `doc:"Entry id" path:"id"`
}

// EntryStatsResponse carries the aggregated row of one entry.
type EntryStatsResponse struct {
	Body struct {
		Stats StatsPayload `json:"stats"`
	}
}

// ToggleVisibilityRequest flips an entry between public and private.
type ToggleVisibilityRequest struct {
	ID string `doc:"Entry id" path:"id"`
}

// ToggleVisibilityResponse reports the entry's new visibility.
type ToggleVisibilityResponse struct {
	Body struct {
		URLStatus string `json:"urlStatus"`
		Message   string `json:"message"`
	}
}

// DeleteEntryRequest deletes one entry.
type DeleteEntryRequest struct {
	ID string `doc:"Entry id" path:"id"`
}

// DeleteEntryResponse confirms the deletion.
type DeleteEntryResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

// RedirectRequest resolves a short code.
type RedirectRequest struct {
	Code string `doc:"The short code" example:"V1StGXR8_Z" path:"code"`
}

// RedirectResponse redirects the visitor to the target URL.
type RedirectResponse struct {
	Status  int
	Headers struct {
		Location string `doc:"The target URL" header:"Location"`
	}
}

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Body struct {
		FullName string `json:"fullName"`
		Email    string `format:"email"     json:"email"`
		Password string `json:"password"    minLength:"8"`
	}
}

// RegisterResponse confirms the registration.
type RegisterResponse struct {
	Status int
	Body   struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		FullName string `json:"fullName"`
		Role     string `json:"role"`
	}
}

// LoginRequest opens a session.
type LoginRequest struct {
	Body struct {
		Email    string `format:"email" json:"email"`
		Password string `json:"password"`
	}
}

// LoginResponse carries the issued token pair. The access token is also set
// as a cookie for browser clients.
type LoginResponse struct {
	Headers struct {
		SetCookie string `header:"Set-Cookie"`
	}
	Body struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
}

// LogoutRequest closes the caller's session.
type LogoutRequest struct{}

// LogoutResponse confirms the logout.
type LogoutResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

// RefreshRequest rotates the token pair.
type RefreshRequest struct {
	Body struct {
		RefreshToken string `json:"refreshToken"`
	}
}

// RefreshResponse carries the rotated token pair.
type RefreshResponse struct {
	Body struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
}

// CurrentUserRequest fetches the caller's own account.
type CurrentUserRequest struct{}

// CurrentUserResponse carries the caller's account.
type CurrentUserResponse struct {
	Body struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		FullName string `json:"fullName"`
		Role     string `json:"role"`
		Status   string `json:"status"`
	}
}

// UpdateDetailsRequest changes the caller's name and email.
type UpdateDetailsRequest struct {
	Body struct {
		FullName string `json:"fullName"`
		Email    string `format:"email" json:"email"`
	}
}

// UpdateDetailsResponse reports the updated account.
type UpdateDetailsResponse struct {
	Body struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		FullName string `json:"fullName"`
		Message  string `json:"message"`
	}
}

// UpdatePasswordRequest replaces the caller's password.
type UpdatePasswordRequest struct {
	Body struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"     minLength:"8"`
	}
}

// UpdatePasswordResponse confirms the password change.
type UpdatePasswordResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

// SetRoleRequest changes an account's role.
type SetRoleRequest struct {
	ID   string `doc:"Account id" path:"id"`
	Body struct {
		Role string `doc:"user or admin" json:"role"`
	}
}

// SetRoleResponse reports the updated account.
type SetRoleResponse struct {
	Body struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Role    string `json:"role"`
		Message string `json:"message"`
	}
}

// SetStatusRequest changes an account's moderation state.
type SetStatusRequest struct {
	ID   string `doc:"Account id" path:"id"`
	Body struct {
		Status string `doc:"normal, blocked or suspended" json:"status"`
	}
}

// SetStatusResponse reports the updated account.
type SetStatusResponse struct {
	Body struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Status  string `json:"status"`
		Message string `json:"message"`
	}
}

// ActivityRequest lists an account's activity log.
type ActivityRequest struct {
	ID    string `doc:"Account id"       path:"id"`
	Page  int    `default:"1"            minimum:"1" query:"page"`
	Limit int    `default:"10"           minimum:"1" query:"limit"`
}

// ActivityEntryPayload is one activity log line.
type ActivityEntryPayload struct {
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`
}

// ActivityResponse is one page of activity log lines, oldest first.
type ActivityResponse struct {
	Body struct {
		Logs []ActivityEntryPayload `json:"logs"`
	}
}

// BatchDeleteRequest deletes several entries at once.
type BatchDeleteRequest struct {
	Body struct {
		URLIDs []string `doc:"Entry ids to delete" json:"urlIds"`
	}
}

// BatchDeleteResponse reports how many entries were removed.
type BatchDeleteResponse struct {
	Body struct {
		DeletedCount int64  `json:"deletedCount"`
		Message      string `json:"message"`
	}
}

// AdminListRequest asks for one page of global usage statistics.
type AdminListRequest struct {
	Page       int    `default:"1"  minimum:"1" query:"page"`
	Limit      int    `default:"10" minimum:"1" query:"limit"`
	UserID     string `doc:"Filter by owner"          query:"userId"`
	Visibility string `doc:"Filter by visibility"     query:"visibility"`
}

// AdminListResponse is one page of global usage statistics.
type AdminListResponse struct {
	Body struct {
		URLStats   []StatsPayload    `json:"urlStats"`
		Pagination PaginationPayload `json:"pagination"`
	}
}
