package stoptime_test

import (
	"context"
	"fmt"
	"log"
	"math/big"

	"github.com/aretw0/stoptime"
)

// ExampleNew_library runs a trajectory with the default in-memory store.
func ExampleNew_library() {
	eng := stoptime.New(stoptime.WithBatchSize(50))

	res, err := eng.Run(context.Background(), big.NewInt(27))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.Steps, res.MaxDigits, res.Interrupted)

	// Output:
	// 111 4 false
}

// ExampleSequence prints the canonical trajectory of 6.
func ExampleSequence() {
	seq, _, err := stoptime.Sequence(big.NewInt(6), 0)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(seq)

	// Output:
	// [6 3 10 5 16 8 4 2 1]
}
