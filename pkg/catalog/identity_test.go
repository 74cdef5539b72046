package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePrincipal(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		want      string
	}{
		{"simple UPN", "Jane@Contoso.com", "jane_contoso.com"},
		{"already normalized", "jane_contoso.com", "jane_contoso.com"},
		{"guest account", "jane_contoso.com#EXT#@tenant.onmicrosoft.com", "jane_contoso.com#ext#_tenant.onmicrosoft.com"},
		{"multiple at signs", "a@b@c", "a_b_c"},
		{"empty", "", ""},
		{"whitespace preserved", " Jane@Contoso.com ", " jane_contoso.com "},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizePrincipal(tc.principal))
		})
	}
}

func TestNormalizePrincipal_Idempotent(t *testing.T) {
	principals := []string{"Jane@Contoso.com", "BOB@x.y", "svc-account_tenant.onmicrosoft.com"}

	for _, p := range principals {
		normalized := NormalizePrincipal(p)
		assert.Equal(t, strings.ToLower(normalized), normalized)
		assert.NotContains(t, normalized, "@")
		assert.Equal(t, normalized, NormalizePrincipal(normalized))
	}
}
