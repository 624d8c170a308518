package recommend

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
)

type querier interface {
	Query(ctx context.Context, prompt string) (Reply, error)
}

// Recommender suggests complementary items for a cart. Failures are logged and
// produce an empty suggestion; they never reach the shopper.
type Recommender struct {
	ai     querier
	logger *log.Logger
}

func NewRecommender(ai querier, logger *log.Logger) *Recommender {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Recommender{ai: ai, logger: logger}
}

// Suggest returns a short recommendation, or "" when the cart is empty or the
// AI service fails.
func (r *Recommender) Suggest(ctx context.Context, productNames []string) string {
	if r == nil || r.ai == nil || len(productNames) == 0 {
		return ""
	}
	reply, err := r.ai.Query(ctx, buildPrompt(productNames))
	if err != nil {
		r.logger.Printf("recommend: suggest items=%d error=%v", len(productNames), err)
		return ""
	}
	return strings.TrimSpace(reply.Response)
}

func buildPrompt(names []string) string {
	return fmt.Sprintf("A shopper has these items in their cart: %s. "+
		"Suggest up to three complementary items available in a mall, one line each.", strings.Join(names, ", "))
}
