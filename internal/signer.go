package internal

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"gitee.com/golang-module/dongle"
)

// Signer implements the two signature schemes the vendor expects.
// Cancellations carry an HMAC-SHA256 over sid+tradeId+amount; status and
// billing calls carry a salted SHA-256 token over sid+tradeId+timestamp.
// The vendor silently rejects a request signed with the wrong scheme, so
// the two paths must never be conflated.
type Signer struct {
	sid         string
	merchantKey string
}

func NewSigner(sid, merchantKey string) *Signer {
	return &Signer{
		sid:         sid,
		merchantKey: merchantKey,
	}
}

// CancelHmac returns base64(HMAC-SHA256(merchantKey, sid + tradeId + amount)).
func (s *Signer) CancelHmac(tradeID string, amount int) string {
	data := fmt.Sprintf("%s%s%d", s.sid, tradeID, amount)
	mac := hmac.New(sha256.New, []byte(s.merchantKey))
	mac.Write([]byte(data))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// AuthToken returns hex(SHA-256(sid + tradeId + timeStamp + merchantKey)),
// the salted hash with the merchant key appended to the signed data.
func (s *Signer) AuthToken(tradeID, timeStamp string) string {
	data := s.sid + tradeID + timeStamp + s.merchantKey
	return dongle.Encrypt.FromString(data).BySha256().ToHexString()
}
