package income

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"kargo/internal/modules/booking"
	"kargo/internal/types"
)

var manila = time.FixedZone("PHT", 8*60*60)

func testConfig() Config {
	return Config{PlatformShare: 0.4, Location: manila, Currency: "₱"}
}

func at(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, manila)
}

func ride(id types.ID, price string, ts time.Time) booking.Booking {
	return booking.Booking{ID: id, RidePrice: price, Timestamp: ts}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    int64
		wantErr bool
	}{
		{name: "Formatted", in: "₱40.00", want: 40},
		{name: "Integer", in: "₱100", want: 100},
		{name: "Padded", in: "₱ 75 ", want: 75},
		{name: "No symbol", in: "30", want: 30},
		{name: "Fraction dropped", in: "₱12.99", want: 12},
		{name: "Empty", in: "", wantErr: true},
		{name: "Symbol only", in: "₱", wantErr: true},
		{name: "Text", in: "free", wantErr: true},
		{name: "Other currency", in: "$40", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePrice(tt.in, "₱")
			if tt.wantErr {
				if !errors.Is(err, ErrPriceParse) {
					t.Fatalf("ParsePrice(%q) err = %v, want ErrPriceParse", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("ParsePrice(%q) = %d, %v; want %d", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestByDay(t *testing.T) {
	agg := NewAggregator(testConfig())
	day1 := at(2024, time.January, 5, 9)
	day2 := at(2024, time.January, 6, 18)

	got, err := agg.ByDay([]booking.Booking{
		ride("b1", "₱100", day1),
		ride("b2", "₱50", day1.Add(2*time.Hour)),
		ride("b3", "₱30", day2),
	})
	if err != nil {
		t.Fatalf("ByDay: %v", err)
	}
	want := []DailyIncome{
		{Key: DayKey{5, time.January, 2024}, Day: "5 Jan 2024", Income: 150},
		{Key: DayKey{6, time.January, 2024}, Day: "6 Jan 2024", Income: 30},
	}
	if len(got) != len(want) {
		t.Fatalf("ByDay = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestByDayFirstSeenOrder(t *testing.T) {
	agg := NewAggregator(testConfig())
	got, err := agg.ByDay([]booking.Booking{
		ride("b1", "₱10", at(2024, time.March, 2, 9)),
		ride("b2", "₱20", at(2024, time.March, 1, 9)),
		ride("b3", "₱30", at(2024, time.March, 2, 10)),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Day != "2 Mar 2024" || got[0].Income != 40 || got[1].Day != "1 Mar 2024" {
		t.Fatalf("ByDay = %+v", got)
	}
}

func TestByDayUsesConfiguredZone(t *testing.T) {
	agg := NewAggregator(testConfig())
	// 20:00 UTC on Jan 5 is already Jan 6 in Manila.
	got, err := agg.ByDay([]booking.Booking{ride("b1", "₱10", time.Date(2024, time.January, 5, 20, 0, 0, 0, time.UTC))})
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Day != "6 Jan 2024" {
		t.Fatalf("day = %s, want 6 Jan 2024", got[0].Day)
	}
}

func TestByDayRejectsMalformedPrice(t *testing.T) {
	agg := NewAggregator(testConfig())
	_, err := agg.ByDay([]booking.Booking{ride("b1", "n/a", at(2024, time.January, 5, 9))})
	if !errors.Is(err, ErrPriceParse) {
		t.Fatalf("err = %v, want ErrPriceParse", err)
	}
}

func TestByMonth(t *testing.T) {
	list := []booking.Booking{
		ride("b1", "₱100", at(2023, time.January, 10, 9)),
		ride("b2", "₱50", at(2024, time.January, 3, 9)),
		ride("b3", "₱30", at(2024, time.December, 31, 23)),
	}

	t.Run("year blind", func(t *testing.T) {
		got, err := NewAggregator(testConfig()).ByMonth(list, 2024)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 12 || got[0].Month != "Jan" || got[11].Month != "Dec" {
			t.Fatalf("months = %+v", got)
		}
		if got[0].Income != 150 || got[11].Income != 30 || got[5].Income != 0 {
			t.Fatalf("ByMonth = %+v", got)
		}
	})

	t.Run("year aware", func(t *testing.T) {
		cfg := testConfig()
		cfg.YearAware = true
		got, err := NewAggregator(cfg).ByMonth(list, 2024)
		if err != nil {
			t.Fatal(err)
		}
		if got[0].Income != 50 || got[11].Income != 30 {
			t.Fatalf("ByMonth = %+v", got)
		}
	})
}

func TestSplit(t *testing.T) {
	agg := NewAggregator(testConfig())
	for _, total := range []float64{0, 1, 100, 173, 2500.5} {
		got := agg.Split(total)
		if math.Abs(got.PlatformShare-total*0.4) > 1e-9 || math.Abs(got.DriverShare-total*0.6) > 1e-9 {
			t.Errorf("Split(%v) = %+v", total, got)
		}
	}
	if got := agg.Split(100); math.Abs(got.PlatformShare-40) > 1e-9 || math.Abs(got.DriverShare-60) > 1e-9 {
		t.Fatalf("Split(100) = %+v", got)
	}
}

func TestFilterByDate(t *testing.T) {
	agg := NewAggregator(testConfig())
	daily, _ := agg.ByDay([]booking.Booking{
		ride("b1", "₱100", at(2024, time.January, 5, 9)),
		ride("b2", "₱30", at(2024, time.January, 6, 9)),
		ride("b3", "₱70", at(2023, time.January, 5, 9)),
	})
	got := agg.FilterByDate(daily, at(2024, time.January, 5, 0))
	if len(got) != 1 || got[0].Income != 100 {
		t.Fatalf("FilterByDate = %+v", got)
	}
	if got := agg.FilterByDate(daily, at(2024, time.February, 1, 0)); len(got) != 0 {
		t.Fatalf("FilterByDate(no match) = %+v", got)
	}
}

type stubBookings struct {
	list []booking.Booking
	err  error
}

func (s stubBookings) Mine(_ context.Context, _ types.ID) ([]booking.Booking, error) {
	return s.list, s.err
}

func TestServiceReport(t *testing.T) {
	svc := NewService(stubBookings{list: []booking.Booking{
		ride("b2", "₱30", at(2024, time.January, 6, 9)),
		ride("b1", "₱70", at(2024, time.January, 5, 9)),
	}}, testConfig())

	date := at(2024, time.January, 5, 0)
	rep, err := svc.Report(context.Background(), "d1", &date, 2024)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if rep.Total != 100 || len(rep.Daily) != 2 || len(rep.Filtered) != 1 || rep.Filtered[0].Day != "5 Jan 2024" {
		t.Fatalf("report = %+v", rep)
	}
	if math.Abs(rep.Split.DriverShare-60) > 1e-9 || rep.Monthly[0].Income != 100 {
		t.Fatalf("report split/monthly = %+v %+v", rep.Split, rep.Monthly[0])
	}

	rep, err = svc.Report(context.Background(), "d1", nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Filtered) != 2 {
		t.Fatalf("unfiltered report = %+v", rep.Filtered)
	}

	boom := errors.New("boom")
	if _, err := NewService(stubBookings{err: boom}, testConfig()).Report(context.Background(), "d1", nil, 0); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}
