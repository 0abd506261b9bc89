package fifo_test

import (
	"fmt"

	"github.com/ardnew/usbfifo/fifo"
)

func Example() {
	f, err := fifo.New(make([]byte, 4*2), 4, 2, false)
	if err != nil {
		fmt.Println(err)
		return
	}

	n := f.WriteN([]byte{1, 1, 2, 2, 3, 3, 4, 4, 5, 5}, 5)
	fmt.Println("written:", n, "full:", f.Full())

	out := make([]byte, 2*2)
	n = f.ReadN(out, 2)
	fmt.Println("read:", n, out, "remaining:", f.Remaining())
	// Output:
	// written: 4 full: true
	// read: 2 [1 1 2 2] remaining: 2
}

func ExampleFIFO_WriteN_overwritable() {
	f, _ := fifo.New(make([]byte, 3), 3, 1, true)

	f.WriteN([]byte{1, 2, 3, 4, 5}, 5)
	f.Write([]byte{6})

	out := make([]byte, 3)
	n := f.ReadN(out, 3)
	fmt.Println(out[:n], f.Stats().Overwritten)
	// Output:
	// [4 5 6] 3
}

func ExampleDMA_LinearReadInfo() {
	f, _ := fifo.New(make([]byte, 4), 4, 1, false)
	f.WriteN([]byte{0, 0, 0}, 3)
	f.ReadN(make([]byte, 3), 3)
	f.WriteN([]byte{'a', 'b', 'c'}, 3)

	d, err := f.ClaimDMA()
	if err != nil {
		fmt.Println(err)
		return
	}
	defer d.Release()

	for f.Count() > 0 {
		win, n := d.LinearReadInfo(0, 4)
		fmt.Printf("%q\n", win)
		d.AdvanceReadPointer(n)
	}
	// Output:
	// "a"
	// "bc"
}
