package model

// Fallback copy shown by public pages when the store cannot be read.

// DefaultOverview returns the built-in company overview.
func DefaultOverview() []Section {
	return []Section{
		{
			Meta:    Meta{ID: "default-about", Order: IntPtr(0)},
			TitleKo: "회사 소개",
			TitleEn: "About Us",
			DescriptionKo: []string{
				"당사는 부동산 및 대체투자 전문 자산운용사입니다.",
				"투자자의 신뢰를 바탕으로 안정적이고 지속 가능한 수익을 추구합니다.",
			},
			DescriptionEn: []string{
				"We are an asset management company specializing in real estate and alternative investments.",
				"Built on investor trust, we pursue stable and sustainable returns.",
			},
		},
	}
}

// DefaultContact returns the built-in contact details.
func DefaultContact() Contact {
	return Contact{
		Meta:            Meta{ID: DocContactMain},
		AddressKo:       "서울특별시 중구 세종대로",
		AddressEn:       "Sejong-daero, Jung-gu, Seoul, Korea",
		BusinessHoursKo: "평일 09:00 - 18:00",
		BusinessHoursEn: "Weekdays 09:00 - 18:00",
	}
}
