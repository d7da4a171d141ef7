// Copyright 2026 The AcervoMapa Authors
// SPDX-License-Identifier: Apache-2.0

package textutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Ceilândia Norte", "ceilandia norte"},
		{"  TAGUATINGA  ", "taguatinga"},
		{"São Sebastião", "sao sebastiao"},
		{"Núcleo Bandeirante", "nucleo bandeirante"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Fold(tt.in), "Fold(%q)", tt.in)
	}
}

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain text passthrough",
			in:   "Registro fotográfico   de batalha de MCs",
			want: "Registro fotográfico de batalha de MCs",
		},
		{
			name: "markup stripped",
			in:   "<p>Evento na <strong>Ceilândia</strong>,<br/>DF</p>",
			want: "Evento na Ceilândia , DF",
		},
		{
			name: "nested lists",
			in:   "<ul><li>grafite</li><li>breaking</li></ul>",
			want: "grafite breaking",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTMLToText(tt.in))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "ab…", Truncate("abcd", 2))
	assert.Equal(t, "", Truncate("abcd", 0))
	// rune-aware, not byte-aware
	assert.Equal(t, "çã…", Truncate("çãos", 2))
}
