package session

import "github.com/pnlboard/leaderboard-api/internal/models"

type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeError
)

// Notifier receives user-visible notices and leaderboard updates.
// Background poll failures are never reported here, only logged.
type Notifier interface {
	Notify(level NoticeLevel, message string)
	LeaderboardUpdated(board models.Leaderboard)
}

type NopNotifier struct{}

func (NopNotifier) Notify(NoticeLevel, string)             {}
func (NopNotifier) LeaderboardUpdated(models.Leaderboard) {}
