package token

import (
	"strings"
	"testing"
	"time"
)

func TestIssueAndParseRoundTrip(t *testing.T) {
	GenerateSecretKey()

	tokenStr, claims, err := Issue(42, time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("claims.UserID = %d, want 42", claims.UserID)
	}
	if claims.TokenID == "" {
		t.Error("claims.TokenID should not be empty")
	}

	parsed, err := Parse(tokenStr)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if parsed.UserID != claims.UserID {
		t.Errorf("parsed.UserID = %d, want %d", parsed.UserID, claims.UserID)
	}
	if parsed.TokenID != claims.TokenID {
		t.Errorf("parsed.TokenID = %s, want %s", parsed.TokenID, claims.TokenID)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	GenerateSecretKey()

	tokenStr, _, err := Issue(1, -time.Minute)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := Parse(tokenStr); err != ErrExpiredToken {
		t.Errorf("Parse error = %v, want ErrExpiredToken", err)
	}
}

func TestParseRejectsTamperedToken(t *testing.T) {
	GenerateSecretKey()

	tokenStr, _, err := Issue(7, time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// 翻转payload中的一个字符
	tampered := []byte(tokenStr)
	if tampered[0] == 'A' {
		tampered[0] = 'B'
	} else {
		tampered[0] = 'A'
	}

	if _, err := Parse(string(tampered)); err != ErrInvalidToken {
		t.Errorf("Parse error = %v, want ErrInvalidToken", err)
	}
}

func TestParseRejectsMalformedToken(t *testing.T) {
	GenerateSecretKey()

	for _, tokenStr := range []string{"", "abc", "a.b.c", strings.Repeat(".", 2)} {
		if _, err := Parse(tokenStr); err != ErrInvalidToken {
			t.Errorf("Parse(%q) error = %v, want ErrInvalidToken", tokenStr, err)
		}
	}
}

func TestParseRejectsTokenSignedWithOldKey(t *testing.T) {
	GenerateSecretKey()
	tokenStr, _, err := Issue(9, time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// 密钥轮换后，旧令牌必须全部失效
	GenerateSecretKey()
	if _, err := Parse(tokenStr); err != ErrInvalidToken {
		t.Errorf("Parse error = %v, want ErrInvalidToken", err)
	}
}
