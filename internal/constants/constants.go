package constants

// Centralized constants for headers, env keys and route paths.
const (
	// Environment variable keys (runtime settings are parsed by
	// internal/config; these are the few read directly).
	EnvConfigPath = "KASPACLASH_CONFIG"
	EnvDBPath     = "KASPACLASH_DB"

	// HTTP headers and content types
	HeaderPlayerAddress = "X-Player-Address"
	HeaderContentType   = "Content-Type"

	ContentTypeJSON = "application/json"
)

// Routes used by the backend router
const (
	RouteAPIPrefix        = "/api"
	RouteHealthz          = "/healthz"
	RouteCharacters       = "/characters"
	RouteLeaderboard      = "/leaderboard"
	RouteVersion          = "/version"
	RouteMatches          = "/matches"
	RouteMatchesJoin      = "/matches/join"
	RouteMatchByCode      = "/matches/:matchCode"
	RouteMatchRounds      = "/matches/:matchCode/rounds"
	RouteMatchSelect      = "/matches/:matchCode/select"
	RouteMatchConfirm     = "/matches/:matchCode/confirm"
	RouteMatchSelTimeout  = "/matches/:matchCode/selection-timeout"
	RouteMatchMove        = "/matches/:matchCode/rounds/:roundNumber/move"
	RouteMatchReject      = "/matches/:matchCode/rounds/:roundNumber/reject"
	RouteMatchTimeout     = "/matches/:matchCode/rounds/:roundNumber/timeout"
	RouteMatchForceState  = "/matches/:matchCode/force-state"
	RouteMatchSpectate    = "/ws/matches/:matchCode"
)

// Common JSON response keys
const (
	JSONKeyError   = "error"
	JSONKeyMessage = "message"
	JSONKeyStatus  = "status"
)

// Common error messages used across API handlers
const (
	ErrInvalidRequest   = "Invalid request"
	ErrInvalidMatchCode = "Invalid match code"
	ErrMatchNotFound    = "Match not found"
	ErrRoundNotFound    = "Round not found"
	ErrAddressRequired  = "Player address required"
	ErrInvalidAddress   = "Invalid player address"

	ErrFailedCreateMatch    = "Failed to create match"
	ErrMatchFull            = "Match is full"
	ErrPlayerNotInThisMatch = "Player not in this match"
	ErrFailedFetchMatches   = "Failed to fetch matches"
	ErrFailedFetchRounds    = "Failed to fetch rounds"

	ErrUnknownCharacter       = "Unknown character"
	ErrSelectionConfirmed     = "Selection already confirmed"
	ErrSelectionExpired       = "Selection deadline expired"
	ErrNothingSelected        = "No character selected"
	ErrSelectionNotInProgress = "Match is not in character select"

	ErrUnknownMove          = "Unknown move"
	ErrMoveAlreadySubmitted = "Move already submitted for this round"
	ErrRoundAlreadyResolved = "Round already resolved"
	ErrMoveDeadlineExpired  = "Move deadline expired"
	ErrMatchNotInProgress   = "Match is not in progress"

	ErrFailedFetchLeaderboard = "Failed to fetch leaderboard"
	ErrForceStateNotAllowed   = "Force-state allowed only from error or disconnected"
	ErrInternal               = "Internal server error"
)

// Logging field names
const (
	LogFieldMatchID  = "match_id"
	LogFieldRoundID  = "round_id"
	LogFieldRoundNum = "round_number"
	LogFieldPlayer   = "player"
	LogFieldState    = "state"
	LogFieldAddr     = "addr"
	LogFieldEvent    = "event"
)
