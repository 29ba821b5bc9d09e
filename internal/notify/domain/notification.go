package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Kind identifies the event a notification was produced for. The set is
// closed: every kind has exactly one registered template.
type Kind string

const (
	KindCommentOnQuestion  Kind = "comment_on_question"
	KindReplyToComment     Kind = "reply_to_comment"
	KindMention            Kind = "mention"
	KindNewFollower        Kind = "new_follower"
	KindSubmissionAccepted Kind = "submission_accepted"
	KindSubmissionRejected Kind = "submission_rejected"
	KindAssignmentDeadline Kind = "assignment_deadline"
	KindBadgeAwarded       Kind = "badge_awarded"
	KindPointsAwarded      Kind = "points_awarded"
	KindTeamInvite         Kind = "team_invite"
)

// TTL is how long a notification stays observable after creation.
const TTL = 30 * 24 * time.Hour

// Payload is the opaque event data a producer hands to Notify. It is copied
// verbatim into the record's metadata so clients can deep-link.
type Payload map[string]any

type Notification struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Kind      Kind      `json:"kind" db:"kind"`
	Title     string    `json:"title" db:"title"`
	Body      string    `json:"body" db:"body"`
	Link      string    `json:"link" db:"link"`
	Metadata  Metadata  `json:"metadata" db:"metadata"`
	IsRead    bool      `json:"is_read" db:"is_read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
}

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrUserNotFound         = errors.New("user not found")
)
