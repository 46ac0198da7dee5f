package messaging

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupName_OrderIndependent(t *testing.T) {
	cases := []struct {
		a, b int64
		want string
	}{
		{5, 9, "chat_5_9"},
		{9, 5, "chat_5_9"},
		{1, 100, "chat_1_100"},
		{100, 1, "chat_1_100"},
		{42, 7, "chat_7_42"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, GroupName(tc.a, tc.b))
		assert.Equal(t, GroupName(tc.a, tc.b), GroupName(tc.b, tc.a))
	}
}

func TestNewMessage_Validation(t *testing.T) {
	req := require.New(t)

	_, err := NewMessage(5, 5, "hi")
	req.ErrorIs(err, ErrInvalidRecipient)

	_, err = NewMessage(5, 9, "   ")
	req.ErrorIs(err, ErrEmptyMessage)

	msg, err := NewMessage(5, 9, "  hi  ")
	req.NoError(err)
	req.Equal("hi", msg.Content)
	req.NotNil(msg.GroupName)
	req.Equal("chat_5_9", *msg.GroupName)
	req.Nil(msg.ReadAt)
	req.False(msg.SentAt.IsZero())
}

func TestPreview_Truncation(t *testing.T) {
	assert.Equal(t, "short", Preview("short"))
	assert.Equal(t, strings.Repeat("x", 50), Preview(strings.Repeat("x", 50)))
	assert.Equal(t, strings.Repeat("x", 50)+"...", Preview(strings.Repeat("x", 51)))
}

func TestMessage_Participants(t *testing.T) {
	req := require.New(t)
	m := Message{SenderID: 5, RecipientID: 9}

	req.True(m.ParticipantOf(5))
	req.True(m.ParticipantOf(9))
	req.False(m.ParticipantOf(7))
	req.Equal(int64(9), m.PartnerOf(5))
	req.Equal(int64(5), m.PartnerOf(9))
}

func TestGroup_HasUser(t *testing.T) {
	req := require.New(t)
	g := &Group{
		Name: "chat_5_9",
		Connections: []Connection{
			{ID: "conn-a", UserID: 5},
		},
	}

	req.True(g.HasUser(5))
	req.False(g.HasUser(9))
	req.False((*Group)(nil).HasUser(5))
}
