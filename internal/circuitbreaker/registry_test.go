package circuitbreaker_test

import (
	"encoding/json"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/marne-tools/status-bot/internal/circuitbreaker"
)

var _ = Describe("Registry", func() {
	var registry *circuitbreaker.Registry

	BeforeEach(func() {
		registry = circuitbreaker.NewRegistry(2, time.Hour)
	})

	It("should return the same breaker for the same key", func() {
		Expect(registry.Get("https://cdn/a.jpg")).To(BeIdenticalTo(registry.Get("https://cdn/a.jpg")))
		Expect(registry.Get("https://cdn/a.jpg")).NotTo(BeIdenticalTo(registry.Get("https://cdn/b.jpg")))
	})

	It("should configure breakers with the registry threshold", func() {
		b := registry.Get("https://cdn/a.jpg")
		b.RecordFailure()
		b.RecordFailure()
		Expect(registry.Stats()).To(HaveKeyWithValue("https://cdn/a.jpg", circuitbreaker.StateOpen))
	})

	It("should report nothing before the first Get", func() {
		Expect(registry.Stats()).To(BeEmpty())
	})

	It("should report states as text in JSON", func() {
		registry.Get("https://cdn/a.jpg").RecordFailure()
		registry.Get("https://cdn/a.jpg").RecordFailure()
		registry.Get("https://cdn/b.jpg")

		out, err := json.Marshal(registry.Stats())
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(MatchJSON(`{"https://cdn/a.jpg":"OPEN","https://cdn/b.jpg":"CLOSED"}`))
	})

	It("should be safe for concurrent use", func() {
		var wg sync.WaitGroup
		seen := make([]*circuitbreaker.Breaker, 50)
		for i := range seen {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				seen[i] = registry.Get("https://cdn/a.jpg")
			}(i)
		}
		wg.Wait()

		for _, b := range seen {
			Expect(b).To(BeIdenticalTo(seen[0]))
		}
	})
})
