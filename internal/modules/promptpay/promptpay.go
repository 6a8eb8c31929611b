package promptpay

import (
	"net/url"
	"strconv"
	"strings"
)

// PayableAmount renders a satang amount the way PromptPay links expect:
// whole-baht amounts without decimals, fractional amounts with trailing
// zeros stripped ("300", "300.5", "300.55").
func PayableAmount(satang int) string {
	if satang < 0 {
		satang = 0
	}
	baht := satang / 100
	rem := satang % 100
	if rem == 0 {
		return strconv.Itoa(baht)
	}
	s := strconv.Itoa(baht) + "." + pad2(rem)
	return strings.TrimRight(s, "0")
}

// BuildReference builds the payment URI from the configured merchant id and
// base endpoint. Pure; the result is snapshotted onto the order row so later
// merchant config changes never touch existing orders.
func BuildReference(merchantID, baseURL string, satang int) string {
	base := strings.TrimRight(baseURL, "/")
	return base + "/" + url.PathEscape(merchantID) + "/" + url.PathEscape(PayableAmount(satang))
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
