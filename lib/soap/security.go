package soap

import (
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"
)

const (
	wsseNamespace = "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-secext-1.0.xsd"
	wsuNamespace  = "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-utility-1.0.xsd"

	usernameTokenProfile = "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-username-token-profile-1.0"
	passwordTextType     = usernameTokenProfile + "#PasswordText"
	passwordDigestType   = usernameTokenProfile + "#PasswordDigest"
	nonceEncodingType    = "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-soap-message-security-1.0#Base64Binary"

	wssTimeFormat = "2006-01-02T15:04:05.000Z"
	wssLifetime   = 10 * time.Minute
)

// wsSecurity writes a WS-Security UsernameToken header.
type wsSecurity struct {
	username string
	password string
	digest   bool
	now      func() time.Time
}

func (s wsSecurity) write(header *etree.Element) error {
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	created := now().UTC()
	createdText := created.Format(wssTimeFormat)

	security := header.CreateElement("wsse:Security")
	security.CreateAttr("soap:mustUnderstand", "1")
	security.CreateAttr("xmlns:wsse", wsseNamespace)
	security.CreateAttr("xmlns:wsu", wsuNamespace)

	timestamp := security.CreateElement("wsu:Timestamp")
	timestamp.CreateAttr("wsu:Id", "Timestamp-"+uuid.NewString())
	timestamp.CreateElement("wsu:Created").SetText(createdText)
	timestamp.CreateElement("wsu:Expires").SetText(created.Add(wssLifetime).Format(wssTimeFormat))

	token := security.CreateElement("wsse:UsernameToken")
	token.CreateAttr("wsu:Id", "SecurityToken-"+uuid.NewString())
	token.CreateElement("wsse:Username").SetText(s.username)

	password := token.CreateElement("wsse:Password")
	if !s.digest {
		password.CreateAttr("Type", passwordTextType)
		password.SetText(s.password)
		token.CreateElement("wsu:Created").SetText(createdText)
		return nil
	}

	nonce := make([]byte, 16)
	_, err := rand.Read(nonce)
	if err != nil {
		return err
	}
	password.CreateAttr("Type", passwordDigestType)
	password.SetText(passwordDigest(nonce, createdText, s.password))

	nonceEl := token.CreateElement("wsse:Nonce")
	nonceEl.CreateAttr("EncodingType", nonceEncodingType)
	nonceEl.SetText(base64.StdEncoding.EncodeToString(nonce))
	token.CreateElement("wsu:Created").SetText(createdText)
	return nil
}

// passwordDigest is base64(sha1(nonce + created + password)).
func passwordDigest(nonce []byte, created, password string) string {
	h := sha1.New()
	h.Write(nonce)
	h.Write([]byte(created))
	h.Write([]byte(password))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
