/* Receive RTTY and print the text */
package main

import (
	rtty "github.com/doismellburning/rtty/src"
)

func main() {
	rtty.RttyRxMain()
}
