/* Generate RTTY test signals */
package main

import (
	rtty "github.com/doismellburning/rtty/src"
)

func main() {
	rtty.RttyGenMain()
}
