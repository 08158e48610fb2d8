package test_utils

import (
	"context"
	"time"

	"github.com/familyhub/familyhub/pkg/user"
)

// Users seeded by TestWithDB.
const (
	TestUserId   = 1
	TestUserUid  = "test-user"
	OtherUserId  = 2
	OtherUserUid = "other-user"
)

func TestUser() user.User {
	return user.User{
		Id:          TestUserId,
		Uid:         TestUserUid,
		Username:    TestUserUid,
		DisplayName: "Test User",
		Settings: user.Settings{
			Timezone:     "Europe/Warsaw",
			WeekFirstDay: time.Monday,
		},
	}
}

// TestUserContext returns a context carrying the seeded test user, as the request middleware would.
func TestUserContext() context.Context {
	return user.WithUser(context.Background(), TestUser())
}
