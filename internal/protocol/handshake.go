// Package protocol implements the terminal push protocol codec: handshake
// option blocks, device timestamps, attendance and operation log parsing, and
// the outbound command wire format. Everything here is a pure function; the
// exact bytes are a compatibility contract with third-party hardware.
package protocol

import "strconv"

// HandshakeOptions are the site-tunable lines of the option block. Everything
// else in the block is fixed by the hardware contract.
type HandshakeOptions struct {
	ErrorDelay    int // seconds a terminal waits before retrying a failed request
	TransInterval int // minutes between batched uploads when realtime is off
}

func DefaultHandshakeOptions() HandshakeOptions {
	return HandshakeOptions{ErrorDelay: 30, TransInterval: 1}
}

// Build returns the option block a terminal consumes to configure its polling
// and reporting behavior. The keys, fixed values, and line-ending convention
// must be reproduced byte-for-byte.
func (o HandshakeOptions) Build(sn string) string {
	lines := []string{
		"GET OPTION FROM: " + sn,
		"Stamp=0",
		"OpStamp=0",
		"PhotoStamp=0",
		"ErrorDelay=" + strconv.Itoa(o.ErrorDelay),
		"Delay=2",
		"TransInterval=" + strconv.Itoa(o.TransInterval),
		"TransFlag=TransData\tAttLog\tAttPhoto\tEnrollUser\tEnrollFP\tFACE\tUserPic\tBioPhoto\tChgUser",
		"Realtime=1",
		"Encrypt=0",
		"BioPhotoFun=1",
		"BioDataFun=1",
		"VisilightFun=1",
		"PostBackTmpFlag=1",
		"DuplicatePunchTimer=1",
		"MultiBioDataSupport=0:1:0:0:0:0:0:0:1:1",
		"MultiBioPhotoSupport=0:0:0:0:0:0:0:0:0:1",
		"PushOptions=UserPicURLFunOn,MultiBioDataSupport,MultiBioPhotoSupport",
	}

	out := ""
	for _, l := range lines {
		out += l + "\n"
	}
	return out
}

// BuildHandshakeResponse builds the option block with default tuning.
func BuildHandshakeResponse(sn string) string {
	return DefaultHandshakeOptions().Build(sn)
}

// OKResponse is the acknowledgement body terminals expect when there is no
// further payload.
const OKResponse = "OK\r\n"
