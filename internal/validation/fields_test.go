package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitle(t *testing.T) {
	assert.Error(t, Title("Hey"))
	assert.Error(t, Title("    "))
	assert.Error(t, Title(strings.Repeat("x", 101)))
	assert.NoError(t, Title("Add dark mode"))
	assert.NoError(t, Title(strings.Repeat("x", 100)))
}

func TestDescription(t *testing.T) {
	assert.Error(t, Description("too short"))
	assert.NoError(t, Description("long enough to pass"))
}

func TestTopicName(t *testing.T) {
	assert.Error(t, TopicName("x"))
	assert.Error(t, TopicName(strings.Repeat("x", 51)))
	assert.NoError(t, TopicName("Bug Report"))
}

func TestHexColor(t *testing.T) {
	assert.NoError(t, HexColor("#0284c7"))
	assert.NoError(t, HexColor("#ABCDEF"))
	assert.Error(t, HexColor("0284c7"))
	assert.Error(t, HexColor("#028"))
	assert.Error(t, HexColor("blue"))
}

func TestCommentContent(t *testing.T) {
	assert.Error(t, CommentContent(""))
	assert.Error(t, CommentContent(strings.Repeat("x", 1001)))
	assert.NoError(t, CommentContent("+1"))
	assert.NoError(t, CommentContent(strings.Repeat("x", 1000)))
}

func TestName(t *testing.T) {
	assert.Error(t, Name(""))
	assert.Error(t, Name("   "))
	assert.Error(t, Name(strings.Repeat("x", 51)))
	assert.NoError(t, Name("Ada Lovelace"))
}

func TestEmail(t *testing.T) {
	assert.NoError(t, Email("user@example.com"))
	assert.Error(t, Email("user@"))
	assert.Error(t, Email("not-an-email"))
	assert.Error(t, Email("a b@example.com"))
}

func TestPassword(t *testing.T) {
	assert.Error(t, Password("short"))
	assert.Error(t, Password(strings.Repeat("x", 73)))
	assert.NoError(t, Password("longenough"))
}
