// A local stand-in for the upstream Mautic metrics API. Serves
// generated data with realistic ratios so the dashboard backend can be
// developed without credentials. Responses are wrapped in the same
// {success, data, message} envelope as the real API, and the daily
// endpoints deliberately mix the two series shapes the real API emits.
package main

import (
	"encoding/json"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

type account struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
	URL      string `json:"url"`
	Status   string `json:"status"`
}

type dailyPoint struct {
	Date         string `json:"date"`
	TotalSends   int    `json:"totalSends,omitempty"`
	TotalOpens   int    `json:"totalOpens,omitempty"`
	UniqueOpens  int    `json:"uniqueOpens,omitempty"`
	TotalClicks  int    `json:"totalClicks,omitempty"`
	UniqueClicks int    `json:"uniqueClicks,omitempty"`
}

var subjects = []string{
	"May Newsletter",
	"Special Invitation",
	"This Week's Highlights",
	"Exclusive Offer",
	"Monthly Report",
	"Launch Announcement",
	"Important Update",
	"Online Event",
	"Customer Survey",
	"Discount Coupon",
}

type stub struct {
	rng      *rand.Rand
	accounts []account
}

func newStub() *stub {
	s := &stub{rng: rand.New(rand.NewSource(42))}
	for i, name := range []string{"Primary Sender", "Transactional", "Marketing EU"} {
		s.accounts = append(s.accounts, account{
			ID:       uuid.NewString(),
			Name:     name,
			Provider: "mautic",
			URL:      "https://mautic.example.com",
			Status:   []string{"active", "active", "paused"}[i],
		})
	}
	return s
}

func writeData(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": data})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": message})
}

// dailyData generates a rising daily trend: opens land at 30-50% of
// sends and clicks at 20-30% of opens, mirroring production ratios.
func (s *stub) dailyData(startDate, endDate string) []dailyPoint {
	start, err1 := time.Parse("2006-01-02", startDate)
	end, err2 := time.Parse("2006-01-02", endDate)
	if err1 != nil || err2 != nil || start.After(end) {
		end = time.Now().Truncate(24 * time.Hour)
		start = end.AddDate(0, 0, -29)
	}

	var points []dailyPoint
	i := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		sends := 100 + int(float64(i)*3.5) + s.rng.Intn(50)
		opens := int(float64(sends) * (0.3 + s.rng.Float64()*0.2))
		clicks := int(float64(opens) * (0.2 + s.rng.Float64()*0.1))
		points = append(points, dailyPoint{
			Date:         d.Format("2006-01-02"),
			TotalSends:   sends,
			TotalOpens:   opens,
			UniqueOpens:  opens * 8 / 10,
			TotalClicks:  clicks,
			UniqueClicks: clicks * 9 / 10,
		})
		i++
	}
	return points
}

func (s *stub) emailMetrics(count int) []map[string]interface{} {
	var out []map[string]interface{}
	for i := 0; i < count; i++ {
		acc := s.accounts[s.rng.Intn(len(s.accounts))]
		sent := 100 + s.rng.Intn(500)
		opens := int(float64(sent) * (0.2 + s.rng.Float64()*0.3))
		clicks := int(float64(opens) * (0.1 + s.rng.Float64()*0.2))
		metrics := map[string]interface{}{
			"sentCount":        sent,
			"openCount":        opens,
			"clickCount":       clicks,
			"bounceCount":      int(float64(sent) * s.rng.Float64() * 0.03),
			"unsubscribeCount": int(float64(sent) * s.rng.Float64() * 0.01),
		}
		// Half the records carry precomputed rates, the other half
		// force the dashboard to compute them
		if i%2 == 0 {
			metrics["openRate"] = float64(opens) / float64(sent) * 100
			metrics["clickRate"] = float64(clicks) / float64(sent) * 100
		}
		out = append(out, map[string]interface{}{
			"id":       uuid.NewString(),
			"subject":  subjects[s.rng.Intn(len(subjects))],
			"campaign": "Campaign " + subjects[s.rng.Intn(len(subjects))],
			"account":  acc.Name,
			"sentDate": time.Now().AddDate(0, 0, -s.rng.Intn(14)).Format("2006-01-02"),
			"metrics":  metrics,
		})
	}
	return out
}

func main() {
	log.Println("=============================================================")
	log.Println(" STUB metrics API for local development. Data is GENERATED. ")
	log.Println(" Point MAUTICMAIL_BASE_URL at this process.                 ")
	log.Println("=============================================================")

	s := newStub()
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, map[string]string{"status": "ok", "service": "mautic-metrics-stub"})
	})

	mux.HandleFunc("GET /users/{userID}/accounts", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, s.accounts)
	})

	mux.HandleFunc("POST /users/{userID}/accounts", func(w http.ResponseWriter, r *http.Request) {
		var input account
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeFailure(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		input.ID = uuid.NewString()
		input.Status = "active"
		s.accounts = append(s.accounts, input)
		w.WriteHeader(http.StatusCreated)
		writeData(w, input)
	})

	mux.HandleFunc("GET /users/{userID}/accounts/compare", func(w http.ResponseWriter, r *http.Request) {
		var out []map[string]interface{}
		for _, id := range r.URL.Query()["accountIds"] {
			out = append(out, map[string]interface{}{
				"accountId": id,
				"totals": map[string]int{
					"sentCount":  1000 + s.rng.Intn(5000),
					"openCount":  300 + s.rng.Intn(1000),
					"clickCount": 50 + s.rng.Intn(200),
				},
			})
		}
		writeData(w, out)
	})

	mux.HandleFunc("GET /users/{userID}/accounts/{accountID}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("accountID")
		for _, acc := range s.accounts {
			if acc.ID == id {
				writeData(w, acc)
				return
			}
		}
		writeFailure(w, http.StatusNotFound, "account not found")
	})

	mux.HandleFunc("PUT /users/{userID}/accounts/{accountID}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("accountID")
		var input account
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeFailure(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		for i, acc := range s.accounts {
			if acc.ID == id {
				input.ID = id
				if input.Status == "" {
					input.Status = acc.Status
				}
				s.accounts[i] = input
				writeData(w, input)
				return
			}
		}
		writeFailure(w, http.StatusNotFound, "account not found")
	})

	mux.HandleFunc("DELETE /users/{userID}/accounts/{accountID}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("accountID")
		for i, acc := range s.accounts {
			if acc.ID == id {
				s.accounts = append(s.accounts[:i], s.accounts[i+1:]...)
				writeData(w, map[string]string{"id": id})
				return
			}
		}
		writeFailure(w, http.StatusNotFound, "account not found")
	})

	mux.HandleFunc("GET /users/{userID}/accounts/{accountID}/webhook", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, map[string]string{
			"url":    "https://hooks.example.com/mautic/" + r.PathValue("accountID"),
			"secret": uuid.NewString(),
		})
	})

	mux.HandleFunc("GET /users/{userID}/metrics", func(w http.ResponseWriter, r *http.Request) {
		daily := s.dailyData(r.URL.Query().Get("startDate"), r.URL.Query().Get("endDate"))
		var sends, opens, clicks int
		for _, p := range daily {
			sends += p.TotalSends
			opens += p.TotalOpens
			clicks += p.TotalClicks
		}
		writeData(w, map[string]int{
			"sentCount":  sends,
			"openCount":  opens,
			"clickCount": clicks,
		})
	})

	mux.HandleFunc("GET /users/{userID}/metrics/by-date", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, s.dailyData(r.URL.Query().Get("startDate"), r.URL.Query().Get("endDate")))
	})

	mux.HandleFunc("GET /users/{userID}/metrics/by-account", func(w http.ResponseWriter, r *http.Request) {
		var out []map[string]interface{}
		for _, acc := range s.accounts {
			out = append(out, map[string]interface{}{
				"accountId":   acc.ID,
				"accountName": acc.Name,
				"totals": map[string]int{
					"sentCount":  1000 + s.rng.Intn(5000),
					"openCount":  300 + s.rng.Intn(1000),
					"clickCount": 50 + s.rng.Intn(200),
				},
			})
		}
		writeData(w, out)
	})

	mux.HandleFunc("GET /users/{userID}/metrics/by-email", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, s.emailMetrics(10))
	})

	mux.HandleFunc("GET /users/{userID}/metrics/compare", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, map[string]interface{}{
			"compareType": r.URL.Query().Get("compareType"),
			"current":     map[string]int{"sentCount": 5200, "openCount": 1700, "clickCount": 310},
			"previous":    map[string]int{"sentCount": 4800, "openCount": 1500, "clickCount": 260},
		})
	})

	// Array shape
	mux.HandleFunc("GET /users/{userID}/metrics/daily-sends", func(w http.ResponseWriter, r *http.Request) {
		daily := s.dailyData(r.URL.Query().Get("startDate"), r.URL.Query().Get("endDate"))
		out := make([]dailyPoint, len(daily))
		for i, p := range daily {
			out[i] = dailyPoint{Date: p.Date, TotalSends: p.TotalSends}
		}
		writeData(w, out)
	})

	// Chart shape, to exercise the client's normalization path
	mux.HandleFunc("GET /users/{userID}/metrics/daily-opens", func(w http.ResponseWriter, r *http.Request) {
		daily := s.dailyData(r.URL.Query().Get("startDate"), r.URL.Query().Get("endDate"))
		labels := make([]string, len(daily))
		totals := make([]int, len(daily))
		uniques := make([]int, len(daily))
		for i, p := range daily {
			labels[i] = p.Date
			totals[i] = p.TotalOpens
			uniques[i] = p.UniqueOpens
		}
		writeData(w, map[string]interface{}{
			"labels": labels,
			"datasets": []map[string]interface{}{
				{"label": "opens", "data": totals},
				{"label": "unique opens", "data": uniques},
			},
		})
	})

	mux.HandleFunc("GET /users/{userID}/metrics/daily-clicks", func(w http.ResponseWriter, r *http.Request) {
		daily := s.dailyData(r.URL.Query().Get("startDate"), r.URL.Query().Get("endDate"))
		out := make([]dailyPoint, len(daily))
		for i, p := range daily {
			out[i] = dailyPoint{Date: p.Date, TotalClicks: p.TotalClicks, UniqueClicks: p.UniqueClicks}
		}
		writeData(w, out)
	})

	mux.HandleFunc("GET /users/{userID}/metrics/rates", func(w http.ResponseWriter, r *http.Request) {
		// STUB_ZERO_RATES exercises the dashboard's local fallback
		if os.Getenv("STUB_ZERO_RATES") != "" {
			writeData(w, map[string]float64{"openRate": 0, "clickRate": 0, "deliveryRate": 0})
			return
		}
		writeData(w, map[string]float64{
			"openRate":        32.5,
			"clickRate":       4.1,
			"clickToOpenRate": 12.6,
			"deliveryRate":    97.8,
			"bounceRate":      1.9,
			"unsubscribeRate": 0.3,
		})
	})

	mux.HandleFunc("GET /users/{userID}/metrics/last-send", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, map[string]string{
			"date":    time.Now().Add(-6 * time.Hour).Format(time.RFC3339),
			"subject": subjects[s.rng.Intn(len(subjects))],
		})
	})

	mux.HandleFunc("GET /users/{userID}/metrics/send-rate", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, map[string]float64{"perDay": 1850, "perHour": 77})
	})

	mux.HandleFunc("GET /users/{userID}/metrics/events", func(w http.ResponseWriter, r *http.Request) {
		var events []map[string]string
		for i := 0; i < 20; i++ {
			eventType := "open"
			if s.rng.Intn(4) == 0 {
				eventType = "click"
			}
			events = append(events, map[string]string{
				"id":           uuid.NewString(),
				"type":         eventType,
				"emailId":      uuid.NewString(),
				"contactEmail": "contact" + uuid.NewString()[:8] + "@example.com",
				"timestamp":    time.Now().Add(-time.Duration(s.rng.Intn(720)) * time.Minute).Format(time.RFC3339),
			})
		}
		writeData(w, events)
	})

	mux.HandleFunc("GET /users/{userID}/emails", func(w http.ResponseWriter, r *http.Request) {
		var out []map[string]string
		for i, subject := range subjects {
			out = append(out, map[string]string{
				"id":        uuid.NewString(),
				"subject":   subject,
				"accountId": s.accounts[i%len(s.accounts)].ID,
				"createdAt": time.Now().AddDate(0, 0, -i).Format("2006-01-02"),
			})
		}
		writeData(w, out)
	})

	mux.HandleFunc("GET /users/{userID}/emails/search/suggestions", func(w http.ResponseWriter, r *http.Request) {
		search := strings.ToLower(r.URL.Query().Get("search"))
		var out []map[string]string
		for _, subject := range subjects {
			if search == "" || strings.Contains(strings.ToLower(subject), search) {
				out = append(out, map[string]string{"id": uuid.NewString(), "subject": subject})
			}
		}
		writeData(w, out)
	})

	mux.HandleFunc("GET /users/{userID}/emails/{emailID}", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, map[string]string{
			"id":        r.PathValue("emailID"),
			"subject":   subjects[s.rng.Intn(len(subjects))],
			"createdAt": time.Now().AddDate(0, 0, -3).Format("2006-01-02"),
		})
	})

	addr := os.Getenv("STUB_ADDR")
	if addr == "" {
		addr = "localhost:8081"
	}
	log.Printf("Stub metrics API listening on http://%s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("stub server failed: %v", err)
	}
}
