package cipher

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecstasoy/cipherecho/pkg/protocol"
)

func TestEncodeKnownVectors(t *testing.T) {
	tests := []struct {
		key, plain, want string
	}{
		{"abc", "hello", "hfnlp"},
		{"LEMON", "ATTACKATDAWN", "LXFOPVEFRNHR"},
		{"lemon", "attack at dawn", "lxfopv ef rnhr"},
		{"b", "Zz", "Aa"},
		{"key", "", ""},
		{"key", "123 !?|", "123 !?|"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"/"+tt.plain, func(t *testing.T) {
			got, err := Encode(tt.key, tt.plain)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeKnownVectors(t *testing.T) {
	got, err := Decode("abc", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hdjln", got)

	got, err = Decode("LEMON", "LXFOPVEFRNHR")
	require.NoError(t, err)
	assert.Equal(t, "ATTACKATDAWN", got)
}

func TestNonLettersDoNotConsumeKey(t *testing.T) {
	withSpace, err := Encode("ab", "a a")
	require.NoError(t, err)
	assert.Equal(t, "a b", withSpace)
}

func TestRoundTrip(t *testing.T) {
	keys := []string{"a", "z", "abc", "Cat", "DOG", "thequickbrownfox"}
	messages := []string{
		"",
		"hello",
		"Hello, World!",
		"MiXeD cAsE 123",
		"pipes|inside|message",
		"tabs\tand\nnewlines",
		"unicode ünïcödé ☃",
		string([]byte{0, 1, 2, 0xff, 'a', 'Z'}),
	}

	for _, k := range keys {
		for _, m := range messages {
			enc, err := Encode(k, m)
			require.NoError(t, err)
			dec, err := Decode(k, enc)
			require.NoError(t, err)
			assert.Equal(t, m, dec, "key=%q", k)
		}
	}
}

func TestRoundTripAllLetters(t *testing.T) {
	var alphabet []byte
	for c := byte('a'); c <= 'z'; c++ {
		alphabet = append(alphabet, c, c-'a'+'A')
	}

	for c := byte('a'); c <= 'z'; c++ {
		k := Key(string(c))
		assert.Equal(t, string(alphabet), k.Decode(k.Encode(string(alphabet))))
	}
}

func TestKeyIsCaseInsensitive(t *testing.T) {
	upper, err := Encode("KEY", "message")
	require.NoError(t, err)
	lower, err := Encode("key", "message")
	require.NoError(t, err)
	assert.Equal(t, lower, upper)
}

func TestInvalidKey(t *testing.T) {
	for _, key := range []string{"", "ab1", "a b", "key|", "ünï", "-"} {
		_, err := Encode(key, "msg")
		assert.True(t, errors.Is(err, protocol.ErrInvalidKey), "encode key=%q err=%v", key, err)

		_, err = Decode(key, "msg")
		assert.True(t, errors.Is(err, protocol.ErrInvalidKey), "decode key=%q err=%v", key, err)
	}
}

func TestNewKeyNormalizes(t *testing.T) {
	k, err := NewKey("MiXeD")
	require.NoError(t, err)
	assert.Equal(t, Key("mixed"), k)
}

func TestConcurrentUse(t *testing.T) {
	done := make(chan struct{})
	for _, key := range []string{"cat", "dog", "emu", "fox"} {
		go func(key string) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 500; i++ {
				enc, err := Encode(key, "concurrent message")
				if err != nil {
					t.Error(err)
					return
				}
				dec, _ := Decode(key, enc)
				if dec != "concurrent message" {
					t.Errorf("key %s: got %q", key, dec)
					return
				}
			}
		}(key)
	}
	for i := 0; i < 4; i++ {
		<-done
	}
}
