package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/TemirB/erp-order-bridge/internal/domain"
)

// generator produces submissions for load runs. A share of them repeat an
// earlier key with the same payload (replays) or with a changed payload
// (conflicts) so the ledger paths see traffic too.
type generator struct {
	rnd       *rand.Rand
	instance  string
	products  []string
	customers []string

	replayRatio   float64
	conflictRatio float64

	seq    int
	recent []domain.Submission
}

const recentKeep = 256

func newGenerator(seed int64, instance string, products, customers []string, replayRatio, conflictRatio float64) *generator {
	return &generator{
		rnd:           rand.New(rand.NewSource(seed)),
		instance:      instance,
		products:      products,
		customers:     customers,
		replayRatio:   replayRatio,
		conflictRatio: conflictRatio,
	}
}

func (g *generator) batch(n int) []domain.Submission {
	out := make([]domain.Submission, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, g.next())
	}
	return out
}

func (g *generator) next() domain.Submission {
	if len(g.recent) > 0 {
		p := g.rnd.Float64()
		switch {
		case p < g.replayRatio:
			return g.recent[g.rnd.Intn(len(g.recent))]
		case p < g.replayRatio+g.conflictRatio:
			sub := g.recent[g.rnd.Intn(len(g.recent))]
			sub.Order.Lines = append([]domain.Line(nil), sub.Order.Lines...)
			sub.Order.Lines[0].Quantity = sub.Order.Lines[0].Quantity.Add(decimal.NewFromInt(1))
			return sub
		}
	}

	g.seq++
	sub := domain.Submission{
		ExternalOrderID: fmt.Sprintf("LOAD-%d-%06d", time.Now().Unix(), g.seq),
		InstanceID:      g.instance,
		Order: domain.Order{
			Date: time.Now().Format("2006-01-02"),
			Customer: domain.Customer{
				ID:    g.customers[g.rnd.Intn(len(g.customers))],
				Name:  "Load Test",
				Phone: fmt.Sprintf("+7%d", 9000000000+g.rnd.Intn(100000000)),
			},
		},
	}
	lines := 1 + g.rnd.Intn(3)
	for i := 0; i < lines; i++ {
		qty := decimal.NewFromInt(int64(1 + g.rnd.Intn(5)))
		price := decimal.New(int64(50+g.rnd.Intn(50000)), -2)
		sub.Order.Lines = append(sub.Order.Lines, domain.Line{
			ProductID: g.products[g.rnd.Intn(len(g.products))],
			Quantity:  qty,
			Price:     price,
			Total:     qty.Mul(price),
		})
	}

	if len(g.recent) < recentKeep {
		g.recent = append(g.recent, sub)
	} else {
		g.recent[g.rnd.Intn(recentKeep)] = sub
	}
	return sub
}
