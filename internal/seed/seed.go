// Package seed generates demo inventory data.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"

	"estoque/internal/core"
)

// RecordWriter creates records through the record service.
type RecordWriter interface {
	CreateReceipt(ctx context.Context, r core.Receipt) (core.Receipt, error)
	CreateWithdrawal(ctx context.Context, w core.Withdrawal) (core.Withdrawal, error)
	CreateWithdrawalItem(ctx context.Context, it core.WithdrawalItem) (core.WithdrawalItem, error)
}

type Options struct {
	Receipts           int
	Withdrawals        int
	ItemsPerWithdrawal int
	// Months spreads dates over that many months before Today.
	Months int
	Today  core.Date
	// Seed makes the output reproducible; zero picks a random seed.
	Seed int64
}

func DefaultOptions() Options {
	return Options{Receipts: 40, Withdrawals: 25, ItemsPerWithdrawal: 2, Months: 6, Today: core.Today()}
}

// Data is one generated batch.
type Data struct {
	Receipts    []core.Receipt
	Withdrawals []core.Withdrawal
	Items       []core.WithdrawalItem
}

var (
	materials = []string{
		"Óleo hidráulico 20L", "Luva nitrílica", "Parafuso sextavado M10", "Filtro de ar",
		"Correia dentada", "Mangueira 1/2\"", "Bota de segurança", "Graxa EP2", "Rolamento 6205",
		"Cabo elétrico 2,5mm", "Disjuntor 32A", "Bico pulverizador",
	}
	units     = []string{"UN", "PC", "L", "KG", "PAR", "M", "CX"}
	regionals = []string{"Norte", "Sul", "Leste", "Oeste", "Centro", ""}
	statuses  = []string{core.DefaultStatus, core.StatusInProgress, core.StatusDone, core.StatusCancelled, ""}
	locations = []string{"Almoxarifado Central", "Oficina", "Campo", "Logística"}
	suppliers = 8
)

// Generate builds records without writing them.
func Generate(opts Options) Data {
	faker := gofakeit.New(opts.Seed)
	if opts.Today.IsEmpty() {
		opts.Today = core.Today()
	}
	if opts.Months < 1 {
		opts.Months = 1
	}
	end := opts.Today.Time
	start := end.AddDate(0, -(opts.Months - 1), -end.Day()+1)

	date := func() core.Date {
		t := faker.DateRange(start, end.Add(23*time.Hour))
		return core.NewDate(t.Year(), int(t.Month()), t.Day())
	}

	supplierNames := make([]string, suppliers)
	for i := range supplierNames {
		supplierNames[i] = faker.Company()
	}
	supplierNames = append(supplierNames, "")

	var data Data
	for i := 0; i < opts.Receipts; i++ {
		qty := decimal.NewFromInt(int64(faker.Number(1, 50)))
		unit := decimal.NewFromFloat(faker.Float64Range(2, 900)).Round(2)
		data.Receipts = append(data.Receipts, core.Receipt{
			OrderRef:    faker.Numerify("45########"),
			SAPCode:     faker.Numerify("1######"),
			Item:        faker.RandomString(materials),
			Quantity:    qty,
			UnitPrice:   unit,
			TotalPrice:  qty.Mul(unit),
			Supplier:    faker.RandomString(supplierNames),
			Invoice:     faker.Numerify("NF-######"),
			Status:      faker.RandomString([]string{"Lançado", "Conferido", ""}),
			Miro:        faker.Numerify("51########"),
			PostingDate: date(),
		})
	}

	for i := 0; i < opts.Withdrawals; i++ {
		w := core.Withdrawal{
			Date:        date(),
			Status:      faker.RandomString(statuses),
			Company:     faker.Company(),
			Location:    faker.RandomString(locations),
			Requester:   faker.Name(),
			DeliveredBy: faker.Name(),
			ReceivedBy:  faker.Name(),
			Farm:        "Fazenda " + faker.LastName(),
			Module:      fmt.Sprintf("M%02d", faker.Number(1, 12)),
			Regional:    faker.RandomString(regionals),
		}
		data.Withdrawals = append(data.Withdrawals, w)

		for j := 0; j < opts.ItemsPerWithdrawal; j++ {
			qty := decimal.NewFromInt(int64(faker.Number(1, 20)))
			unitValue := decimal.NewFromFloat(faker.Float64Range(1, 300)).Round(2)
			data.Items = append(data.Items, core.WithdrawalItem{
				Date:        w.Date,
				Status:      w.Status,
				Company:     w.Company,
				SAPCode:     faker.Numerify("1######"),
				Item:        faker.RandomString(materials),
				Quantity:    qty,
				Unit:        faker.RandomString(units),
				UnitValue:   unitValue.String(),
				Location:    w.Location,
				Requester:   w.Requester,
				DeliveredBy: w.DeliveredBy,
				ReceivedBy:  w.ReceivedBy,
				Farm:        w.Farm,
				Module:      w.Module,
				Regional:    w.Regional,
			})
		}
	}
	return data
}

// Counts reports how many records Run wrote.
type Counts struct {
	Receipts    int
	Withdrawals int
	Items       int
}

// Run generates a batch and writes it, stopping at the first failure.
func Run(ctx context.Context, w RecordWriter, opts Options) (Counts, error) {
	data := Generate(opts)
	var c Counts
	for _, r := range data.Receipts {
		if _, err := w.CreateReceipt(ctx, r); err != nil {
			return c, fmt.Errorf("seed receipt: %w", err)
		}
		c.Receipts++
	}
	for _, wd := range data.Withdrawals {
		if _, err := w.CreateWithdrawal(ctx, wd); err != nil {
			return c, fmt.Errorf("seed withdrawal: %w", err)
		}
		c.Withdrawals++
	}
	for _, it := range data.Items {
		if _, err := w.CreateWithdrawalItem(ctx, it); err != nil {
			return c, fmt.Errorf("seed withdrawal item: %w", err)
		}
		c.Items++
	}
	return c, nil
}
