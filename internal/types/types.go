package types

import "time"

// Friend statuses. A relationship is always stored as two directed
// records whose statuses mirror each other until both become friends.
const (
	FriendStatusRequested = "requested" // pending, we sent it
	FriendStatusPending   = "pending"   // pending, they sent it
	FriendStatusFriends   = "friends"
)

// Content types
const (
	ContentTypeMovie  = "movie"
	ContentTypeSeries = "series"
)

type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	PasswordDigest string    `json:"-"`
	Created        time.Time `json:"created_at"`
	Updated        time.Time `json:"updated_at"`
}

type Profile struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Username      *string   `json:"username"`
	Country       string    `json:"country"`
	Subscriptions []string  `json:"subscriptions"`
	Created       time.Time `json:"created_at"`
	Updated       time.Time `json:"updated_at"`
}

// ProfileView is the trimmed profile shape sent to other users.
type ProfileView struct {
	ID       string  `json:"id"`
	UserID   string  `json:"user_id"`
	Username *string `json:"username"`
	Country  string  `json:"country"`
}

type Friend struct {
	ID          string    `json:"id"`
	RequesterID string    `json:"requester_id"`
	RecipientID string    `json:"recipient_id"`
	Status      string    `json:"status"`
	Created     time.Time `json:"created_at"`
	Updated     time.Time `json:"updated_at"`
}

// FriendEntry is a friend record joined with the counterparty's profile.
type FriendEntry struct {
	ID      string      `json:"id"`
	Status  string      `json:"status"`
	Profile ProfileView `json:"profile"`
}

type Content struct {
	ID                 string     `json:"id"`
	CatalogID          string     `json:"catalog_id"`
	Type               string     `json:"type"`
	Title              string     `json:"title"`
	ReleaseYear        int        `json:"release_year"`
	Poster             string     `json:"poster"`
	Backdrop           string     `json:"backdrop"`
	Overview           string     `json:"overview"`
	Rating             float64    `json:"rating"`
	Runtime            *int       `json:"runtime,omitempty"` // movies only
	Genres             []string   `json:"genres"`
	Seasons            []Season   `json:"seasons,omitempty"` // series only
	StreamingInfo      []Region   `json:"streaming_info"`
	StreamingValidated bool       `json:"streaming_validated"`
	StreamingUpdated   *time.Time `json:"streaming_updated,omitempty"`
	Likes              int        `json:"likes"`
	Dislikes           int        `json:"dislikes"`
	Created            time.Time  `json:"created_at"`
}

type Season struct {
	AirDate      string  `json:"air_date"`
	EpisodeCount int     `json:"episode_count"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	Poster       string  `json:"poster"`
	SeasonNumber int     `json:"season_number"`
	Rating       float64 `json:"rating"`
}

// Region groups streaming availability by country.
type Region struct {
	Country      string         `json:"country"`
	Availability []Availability `json:"availability"`
}

type Availability struct {
	Addon         string `json:"addon,omitempty"`
	Leaving       string `json:"leaving,omitempty"`
	Link          string `json:"link"`
	Service       string `json:"service"`
	StreamingType string `json:"streaming_type"`
}

type Watched struct {
	ID        string    `json:"id"`
	ProfileID string    `json:"profile_id"`
	ContentID string    `json:"content_id"`
	Liked     bool      `json:"liked"`
	Disliked  bool      `json:"disliked"`
	Mood      string    `json:"mood"`
	Created   time.Time `json:"created_at"`
	Updated   time.Time `json:"updated_at"`
}

// WatchedEntry is a watched record joined with its content.
type WatchedEntry struct {
	Watched
	Content Content `json:"content"`
}

type Watchlist struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Owners  []string         `json:"owners"`
	List    []WatchlistEntry `json:"list"`
	Created time.Time        `json:"created_at"`
	Updated time.Time        `json:"updated_at"`
}

type WatchlistEntry struct {
	ID        string   `json:"id"`
	ContentID string   `json:"content_id"`
	Position  int      `json:"order"`
	Content   *Content `json:"content,omitempty"`
}

type Invitation struct {
	ID          string    `json:"id"`
	WatchlistID string    `json:"watchlist_id"`
	RequesterID string    `json:"requester_id"`
	RecipientID string    `json:"recipient_id"`
	Created     time.Time `json:"created_at"`
}

// InvitationView is an invitation with requester and watchlist populated.
type InvitationView struct {
	ID        string      `json:"id"`
	Watchlist Watchlist   `json:"watchlist"`
	Requester ProfileView `json:"requester"`
}

// Request payloads

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateProfileRequest struct {
	Username      string   `json:"username"`
	Country       string   `json:"country"`
	Subscriptions []string `json:"subscriptions"`
}

type SearchProfilesRequest struct {
	Username string `json:"username"`
}

type FriendRequest struct {
	Profile string `json:"profile"`
}

type CreateWatchlistRequest struct {
	Name    string `json:"name"`
	Content string `json:"content,omitempty"`
}

type WatchlistContentRequest struct {
	Watchlist string `json:"watchlist"`
	Content   string `json:"content"`
}

type ReorderWatchlistRequest struct {
	Watchlist string         `json:"watchlist"`
	Content   map[string]int `json:"content"` // content id -> new order
}

type WatchlistRequest struct {
	Watchlist string `json:"watchlist"`
}

type InviteRequest struct {
	Watchlist  string   `json:"watchlist"`
	Recipients []string `json:"recipients"`
}

type InvitationRequest struct {
	Invitation string `json:"invitation"`
}

type ContentRequest struct {
	ID string `json:"id"`
}

type ReactionRequest struct {
	Content string `json:"content"`
}

type MoodRequest struct {
	Content string `json:"content"`
	Mood    string `json:"mood"`
}

type UpdateAvailabilityRequest struct {
	ID            string   `json:"id"`
	StreamingInfo []Region `json:"streaming_info"`
}
