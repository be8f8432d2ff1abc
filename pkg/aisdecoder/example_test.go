package aisdecoder_test

import (
	"context"
	"fmt"
	"sort"

	"github.com/bft-labs/aisdecoder/pkg/aisdecoder"
)

// ExampleNew demonstrates how to embed the decoder in your application.
func ExampleNew() {
	bus := newMemoryBus()

	svc, err := aisdecoder.New(aisdecoder.Config{
		InputTopic:      "ais/raw",
		OutputBaseTopic: "ais/decoded",
	}, aisdecoder.WithBus(bus))
	if err != nil {
		fmt.Printf("failed to create service: %v\n", err)
		return
	}

	if err := svc.Start(context.Background()); err != nil {
		fmt.Printf("failed to start: %v\n", err)
		return
	}

	bus.Inject(singleLine)
	<-bus.notify

	for _, msg := range bus.Published() {
		fmt.Println(msg.Topic)
	}

	_ = svc.Stop()

	// Output: ais/decoded/265511430/1
}

// Example_withEventHandler demonstrates how to receive service events.
func Example_withEventHandler() {
	handler := &printingHandler{}

	svc, err := aisdecoder.New(aisdecoder.Config{
		InputTopic:      "ais/raw",
		OutputBaseTopic: "ais/decoded",
	}, aisdecoder.WithBus(newMemoryBus()), aisdecoder.WithEventHandler(handler))
	if err != nil {
		fmt.Printf("failed to create service: %v\n", err)
		return
	}

	_ = svc.Start(context.Background())
	_ = svc.Stop()

	// Output:
	// Stopped -> Starting
	// Starting -> Running
	// Running -> Stopping
	// Stopping -> Stopped
}

// printingHandler implements aisdecoder.EventHandler.
type printingHandler struct {
	aisdecoder.BaseEventHandler // Embed for no-op defaults
}

func (h *printingHandler) OnStateChange(event aisdecoder.StateChangeEvent) {
	fmt.Printf("%s -> %s\n", event.Previous, event.Current)
}

// Example_moduleVersions demonstrates version checking.
func Example_moduleVersions() {
	versions := aisdecoder.ModuleVersions()

	names := make([]string, 0, len(versions))
	for name := range versions {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Printf("%s: %s\n", name, versions[name])
	}

	// Output:
	// ais: 1.0.0
	// aisdecoder: 1.0.0
	// envelope: 1.0.0
	// log: 1.1.0
	// reassembly: 1.0.0
}
