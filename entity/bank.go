package entity

// Bank is one entry of the vendor's supported bank table.
type Bank struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// Banks lists the banks accepted for virtual account issuance and account
// transfer. The order is fixed; clients render the list as-is.
var Banks = []Bank{
	{Name: "KB", Code: "004"},
	{Name: "SHINHAN", Code: "088"},
	{Name: "WOORI", Code: "020"},
	{Name: "HANA", Code: "081"},
	{Name: "NH", Code: "011"},
	{Name: "IBK", Code: "003"},
	{Name: "KBANK", Code: "089"},
	{Name: "KAKAO", Code: "090"},
	{Name: "TOSS", Code: "092"},
	{Name: "SC", Code: "023"},
	{Name: "CITI", Code: "027"},
	{Name: "BUSAN", Code: "032"},
	{Name: "KYONGNAM", Code: "039"},
	{Name: "DAEGU", Code: "031"},
	{Name: "JEONBUK", Code: "037"},
	{Name: "GWANGJU", Code: "034"},
	{Name: "JEJU", Code: "035"},
}
