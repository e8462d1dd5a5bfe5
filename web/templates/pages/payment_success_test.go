package pages

import (
	"context"
	"strings"
	"testing"
)

func TestPaymentSuccess(t *testing.T) {
	tests := []struct {
		name    string
		props   PaymentSuccessProps
		want    []string
		notWant []string
	}{
		{
			name:  "deposit",
			props: PaymentSuccessProps{PaymentType: "deposit", RedirectURL: "/thank-you", RedirectDelay: 5},
			want:  []string{"Payment Successful!", `content="5;url=/thank-you"`, "Deposit received"},
		},
		{
			name:  "full",
			props: PaymentSuccessProps{PaymentType: "full", RedirectURL: "/thank-you", RedirectDelay: 3},
			want:  []string{`content="3;url=/thank-you"`, "Payment received"},
		},
		{
			name:    "url is escaped",
			props:   PaymentSuccessProps{RedirectURL: `/x"><script>`, RedirectDelay: 5},
			want:    []string{"/x&#34;&gt;&lt;script&gt;", "redirected in 5 seconds"},
			notWant: []string{"<script>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b strings.Builder
			if err := PaymentSuccess(tt.props).Render(context.Background(), &b); err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(b.String(), w) {
					t.Errorf("output missing %q", w)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(b.String(), nw) {
					t.Errorf("output contains %q", nw)
				}
			}
		})
	}
}
