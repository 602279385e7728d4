package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNotificationPage_Decode(t *testing.T) {
	raw := `{
		"results": [
			{"id": 1, "subject": "Results ready", "body": "CBC", "read": false, "created_at": "2024-03-01T10:00:00Z"},
			{"id": 2, "subject": "Reminder", "body": "Fasting", "read": true, "created_at": "2024-03-02T10:00:00Z"}
		],
		"next": "http://localhost:8000/api/notifications/?page=2"
	}`

	var p NotificationPage
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	require.Len(t, p.Results, 2)
	require.True(t, p.HasMore())
	require.Equal(t, 1, p.Unread())
	require.Equal(t, "Results ready", p.Results[0].Subject)
}

func TestNotificationPage_LastPage(t *testing.T) {
	var p NotificationPage
	require.NoError(t, json.Unmarshal([]byte(`{"results": [], "next": null}`), &p))
	require.False(t, p.HasMore())
	require.Zero(t, p.Unread())
}

func TestSignUp_FieldNames(t *testing.T) {
	b, err := json.Marshal(SignUp{Email: "a@b.c", Password: "p", FullName: "Ann", Password2: "p"})
	require.NoError(t, err)
	require.JSONEq(t, `{"email":"a@b.c","password":"p","fullname":"Ann","password2":"p"}`, string(b))
}
