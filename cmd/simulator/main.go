// Feeds the backend synthetic driver positions for local development.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

const moveStep = 0.0005

type position struct {
	DeviceID  string  `json:"device_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Speed     float64 `json:"speed"`
	Heading   float64 `json:"heading"`
}

func main() {
	apiURL := flag.String("url", "http://localhost:8080/location", "backend location endpoint")
	drivers := flag.Int("drivers", 10, "number of simulated drivers")
	centerLat := flag.Float64("lat", 28.6353, "starting area center latitude")
	centerLng := flag.Float64("lng", -106.0889, "starting area center longitude")
	flag.Parse()

	fmt.Printf("simulating %d drivers around (%.4f, %.4f)\n", *drivers, *centerLat, *centerLng)

	var wg sync.WaitGroup
	for i := 1; i <= *drivers; i++ {
		wg.Add(1)
		id := fmt.Sprintf("taxi-sim-%03d", i)
		lat := *centerLat + (rand.Float64()*0.02 - 0.01)
		lng := *centerLng + (rand.Float64()*0.02 - 0.01)
		go simulateDriver(*apiURL, id, lat, lng, &wg)
	}
	wg.Wait()
}

// simulateDriver posts a random walk for one device until the process exits.
func simulateDriver(apiURL, id string, lat, lng float64, wg *sync.WaitGroup) {
	defer wg.Done()

	pos := position{
		DeviceID:  id,
		Latitude:  lat,
		Longitude: lng,
		Speed:     rand.Float64() * 60,
		Heading:   rand.Float64() * 360,
	}
	client := &http.Client{Timeout: 2 * time.Second}

	for {
		pos.Latitude += rand.Float64()*moveStep - moveStep/2
		pos.Longitude += rand.Float64()*moveStep - moveStep/2

		payload, _ := json.Marshal(pos)
		resp, err := client.Post(apiURL, "application/json", bytes.NewBuffer(payload))
		if err != nil {
			fmt.Printf("[%s] send failed: %v\n", id, err)
		} else {
			if resp.StatusCode != http.StatusCreated {
				fmt.Printf("[%s] rejected: %d\n", id, resp.StatusCode)
			}
			resp.Body.Close()
		}

		time.Sleep(time.Duration(1000+rand.Intn(2000)) * time.Millisecond)
	}
}
