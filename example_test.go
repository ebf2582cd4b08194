// SPDX-License-Identifier: EPL-2.0

package audflac_test

import (
	"bytes"
	"fmt"
	"io"
	"log"

	"github.com/ik5/audflac"
)

func ExampleDecodeAll() {
	data := encodeStream([][]int64{{10, 20, -10, -20}})

	buf, err := audflac.DecodeAll(bytes.NewReader(data))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(buf.Format.SampleRate, "Hz,", buf.Format.NumChannels, "channel")
	fmt.Println(buf.Data)
	// Output:
	// 8000 Hz, 1 channel
	// [10 20 -10 -20]
}

func ExampleStream_Next() {
	data := encodeStream(
		[][]int64{{1, 2, 3, 4}},
		[][]int64{{5, 6}},
	)

	s, err := audflac.NewStream(bytes.NewReader(data))
	if err != nil {
		log.Fatal(err)
	}
	for {
		f, err := s.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("frame at sample %d: %d samples\n", f.SampleNumber(), f.BlockSize)
	}
	// Output:
	// frame at sample 0: 4 samples
	// frame at sample 4: 2 samples
}
