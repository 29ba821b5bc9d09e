package template

import "github.com/studypulse/notify-engine/internal/notify/domain"

// registry maps every notification kind to its template. Kinds whose wording
// depends on what was mentioned or replied to carry a variant map keyed by
// the payload's contentType.
var registry = map[domain.Kind]Template{
	domain.KindCommentOnQuestion: {
		Single: &Definition{
			Title: "New comment on your question",
			Body:  "{commenterName} commented on \"{questionTitle}\"",
			Link:  "/questions/{questionId}#comment-{commentId}",
		},
		Required: []string{"commenterName", "questionTitle", "questionId"},
	},
	domain.KindReplyToComment: {
		Single: &Definition{
			Title: "New reply to your comment",
			Body:  "{replierName} replied to your comment on \"{questionTitle}\"",
			Link:  "/questions/{questionId}#comment-{replyId}",
		},
		Required: []string{"replierName", "questionId"},
	},
	domain.KindMention: {
		Variants: map[string]Definition{
			"question": {
				Title: "You were mentioned",
				Body:  "{mentionerName} mentioned you in a question",
				Link:  "/questions/{questionId}",
			},
			"reply": {
				Title: "You were mentioned",
				Body:  "{mentionerName} mentioned you in a reply",
				Link:  "/questions/{questionId}#comment-{replyId}",
			},
			"post": {
				Title: "You were mentioned",
				Body:  "{mentionerName} mentioned you in a post",
				Link:  "/posts/{postId}",
			},
			DefaultVariant: {
				Title: "You were mentioned",
				Body:  "{mentionerName} mentioned you",
				Link:  "/notifications",
			},
		},
		Required: []string{"mentionerName"},
	},
	domain.KindNewFollower: {
		Single: &Definition{
			Title: "New follower",
			Body:  "{followerName} started following you",
			Link:  "/users/{followerId}",
		},
		Required: []string{"followerName", "followerId"},
	},
	domain.KindSubmissionAccepted: {
		Single: &Definition{
			Title: "Submission accepted",
			Body:  "Your solution to \"{assignmentTitle}\" was accepted",
			Link:  "/assignments/{assignmentId}/submissions/{submissionId}",
		},
		Required: []string{"assignmentTitle", "assignmentId"},
	},
	domain.KindSubmissionRejected: {
		Single: &Definition{
			Title: "Submission needs changes",
			Body:  "Your solution to \"{assignmentTitle}\" was not accepted",
			Link:  "/assignments/{assignmentId}/submissions/{submissionId}",
		},
		Required: []string{"assignmentTitle", "assignmentId"},
	},
	domain.KindAssignmentDeadline: {
		Single: &Definition{
			Title: "Deadline approaching",
			Body:  "\"{assignmentTitle}\" is due {dueDate}",
			Link:  "/assignments/{assignmentId}",
		},
		Required: []string{"assignmentTitle", "dueDate", "assignmentId"},
	},
	domain.KindBadgeAwarded: {
		Single: &Definition{
			Title: "Badge earned",
			Body:  "You were awarded the \"{badgeName}\" badge",
			Link:  "/profile/badges",
		},
		Required: []string{"badgeName"},
	},
	domain.KindPointsAwarded: {
		Single: &Definition{
			Title: "Points earned",
			Body:  "You earned {points} points for {reason}",
			Link:  "/profile/points",
		},
		Required: []string{"points", "reason"},
	},
	domain.KindTeamInvite: {
		Single: &Definition{
			Title: "Team invitation",
			Body:  "{inviterName} invited you to join {teamName}",
			Link:  "/teams/{teamId}/invites",
		},
		Required: []string{"inviterName", "teamName", "teamId"},
	},
}
