package translate

// SalesDictionary is the English to Chinese vocabulary of the supermarket
// sales dataset.
func SalesDictionary() Dictionary {
	return Dictionary{
		Columns: map[string]string{
			"Invoice ID":              "发票编号",
			"Branch":                  "分店",
			"City":                    "城市",
			"Customer type":           "客户类型",
			"Gender":                  "性别",
			"Product line":            "产品线",
			"Unit price":              "单价",
			"Quantity":                "数量",
			"Tax 5%":                  "税费5%",
			"Total":                   "总计",
			"Date":                    "日期",
			"Time":                    "时间",
			"Payment":                 "支付方式",
			"cogs":                    "销售成本",
			"gross margin percentage": "毛利率百分比",
			"gross income":            "毛利润",
			"Rating":                  "评分",
		},
		Values: map[string]map[string]string{
			"Customer type": {
				"Member": "会员",
				"Normal": "普通客户",
			},
			"Gender": {
				"Male":   "男",
				"Female": "女",
			},
			"Product line": {
				"Health and beauty":      "健康美容",
				"Electronic accessories": "电子配件",
				"Home and lifestyle":     "家居生活",
				"Sports and travel":      "运动旅行",
				"Food and beverages":     "食品饮料",
				"Fashion accessories":    "时尚配饰",
			},
			"Payment": {
				"Ewallet":     "电子钱包",
				"Cash":        "现金",
				"Credit card": "信用卡",
			},
		},
	}
}
