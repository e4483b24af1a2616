package accounts

import "github.com/aoiro-dev/aoiro/internal/model"

// DefaultChart returns the chart of accounts provisioned for a new sole proprietor.
func DefaultChart() []model.Account {
	asset := func(name, desc string) model.Account {
		return model.Account{Name: name, Type: model.AccountTypeAsset, Description: desc}
	}
	liability := func(name, desc string) model.Account {
		return model.Account{Name: name, Type: model.AccountTypeLiability, Description: desc}
	}
	equity := func(name, desc string) model.Account {
		return model.Account{Name: name, Type: model.AccountTypeEquity, Description: desc}
	}
	revenue := func(name, desc string) model.Account {
		return model.Account{Name: name, Type: model.AccountTypeRevenue, Description: desc}
	}
	expense := func(name, desc string) model.Account {
		return model.Account{Name: name, Type: model.AccountTypeExpense, Description: desc}
	}

	return []model.Account{
		asset("現金", "手元の現金"),
		asset("普通預金", "事業用口座の預金"),
		asset("売掛金", "未回収の売上代金"),
		asset("備品", "パソコンなど1年以上使用で10万円以上の物品"),
		asset("車両運搬具", "自動車・バイクなど"),
		asset("工具器具備品", "事業用に使われる工具や器具"),
		asset("ソフトウェア", "購入または自作のソフトウェア"),

		liability("買掛金", "未払いの仕入代金"),
		liability("未払金", "後払いの経費など"),

		equity("元入金", "事業主の元手"),
		equity("事業主借", "個人から事業への資金移動"),
		equity("事業主貸", "事業から個人への資金移動"),

		revenue("売上高", "事業の主な収入"),
		revenue("雑収入", "本業以外の少額な収入"),

		expense("仕入高", "商品の仕入原価"),
		expense("消耗品費", "10万円未満の物品購入費など"),
		expense("通信費", "インターネット・携帯電話代など"),
		expense("旅費交通費", "電車代・バス代・宿泊費など"),
		expense("接待交際費", "取引先との飲食代や贈答品など"),
		expense("地代家賃", "事務所や店舗の家賃"),
		expense("水道光熱費", "電気・ガス・水道代"),
		expense("支払手数料", "振込手数料や仲介手数料など"),
		expense("租税公課", "固定資産税、自動車税などの税金や公的な負担金"),
		expense("減価償却費", "固定資産などの価値減少分"),
		expense("雑費", "他の科目に当てはまらない少額な経費"),
		expense("給料賃金", "従業員への給与・賞与"),
		expense("外注工賃", "外部の業者や個人への業務委託費"),
		expense("修繕費", "店舗や備品の修理代"),
		expense("専従者給与", "青色事業専従者（家族従業員）への給与"),
		expense("荷造運賃", "商品の発送にかかる梱包材や送料"),
		expense("広告宣伝費", "広告やチラシなどの宣伝費用"),
		expense("損害保険料", "火災保険や自動車保険などの保険料"),
		expense("福利厚生費", "従業員の健康診断や慰安の費用"),
		expense("利子割引料", "事業用借入金の利息"),
		expense("貸倒金", "回収できなくなった売掛金など"),
	}
}
