package coinfolio

import "testing"

func TestComputeRealizedPnL(t *testing.T) {
	tests := []struct {
		name string
		sell Draft
		want float64
	}{
		{
			name: "break even",
			sell: must(NewSell(at(1), 1, "BTC/USDC", 30000, leg("BTC", 2, 30000), leg("USDC", 60000, 1))),
			want: 0,
		},
		{
			name: "profit",
			sell: must(NewSell(at(1), 1, "ETH/USDC", 2200, leg("ETH", 1, 2000), leg("USDC", 2200, 1))),
			want: 200,
		},
		{
			name: "received price defaults to one",
			sell: must(NewSell(at(1), 1, "ETH/USDC", 1800, leg("ETH", 1, 2000), Leg{"USDC", 1800, nil})),
			want: -200,
		},
		{
			name: "sold price missing",
			sell: must(NewSell(at(1), 1, "ETH/USDC", 1800, Leg{"ETH", 1, nil}, leg("USDC", 1800, 1))),
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, trades := ledger(t, tt.sell)
			if got := ComputeRealizedPnL(entries, trades); !near(got, tt.want) {
				t.Errorf("ComputeRealizedPnL() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeRealizedPnL_SumsSells(t *testing.T) {
	entries, trades := ledger(t,
		must(NewBuy(at(0), 1, "ETH/USDC", 2000, leg("USDC", 4000, 1), leg("ETH", 2, 2000))),
		must(NewSell(at(1), 1, "ETH/USDC", 2200, leg("ETH", 1, 2000), leg("USDC", 2200, 1))),
		must(NewSell(at(2), 1, "ETH/USDC", 2500, leg("ETH", 1, 2000), leg("USDC", 2500, 1))),
	)

	if got := ComputeRealizedPnL(entries, trades); !near(got, 700) {
		t.Errorf("ComputeRealizedPnL() = %v, want 700", got)
	}
	gains := RealizedGains(entries, trades)
	if len(gains) != 2 {
		t.Fatalf("RealizedGains() = %v, want 2 gains", gains)
	}
	if gains[0].PnL != 200 || gains[1].PnL != 500 {
		t.Errorf("RealizedGains() = %v, want PnL 200 then 500", gains)
	}
}

func TestRealizedGains_MissingLeg(t *testing.T) {
	entries, trades := ledger(t,
		must(NewSell(at(1), 1, "ETH/USDC", 2200, leg("ETH", 1, 2000), leg("USDC", 2200, 1))),
	)
	// Drop the received leg.
	entries = entries[:1]

	gains, anomalies := realizedGains(entries, trades)
	if len(gains) != 0 {
		t.Errorf("realizedGains() = %v, want none", gains)
	}
	if len(anomalies) != 1 || anomalies[0].Kind != AnomalyMissingLeg {
		t.Errorf("anomalies = %v, want one missing leg", anomalies)
	}
}
