package advice

// Canned response blocks. "{query}" is replaced with the customer's
// original query text; the blocks contain literal '%' so they are never
// used as format strings.
var templates = map[Intent]map[Language]string{
	IntentMutualFund: {
		Hindi:   `🎯 **म्यूचुअल फंड निवेश सलाह**

आपके लिए सुझाव:

💰 **SIP के फायदे:**
• रुपया कॉस्ट एवरेजिंग का लाभ
• मासिक अनुशासित निवेश
• कंपाउंडिंग की शक्ति
• ₹500 से शुरुआत करें

📊 **फंड कैटेगरी:**
• लार्ज कैप: कम जोखिम, स्थिर रिटर्न
• मिड कैप: मध्यम जोखिम, बेहतर रिटर्न
• स्माल कैप: उच्च जोखिम, उच्च रिटर्न

💡 **टैक्स बेनिफिट:**
• ELSS: 3 साल लॉक-इन, 80C में छूट
• इक्विटी फंड: 1 साल बाद 10% LTCG

⚠️ **जोखिम:** म्यूचुअल फंड निवेश बाजार जोखिमों के अधीन है।`,
		English: `🎯 **Mutual Fund Investment Advice**

Recommendations for you:

💰 **SIP Benefits:**
• Rupee cost averaging advantage
• Disciplined monthly investment
• Power of compounding
• Start with ₹500

📊 **Fund Categories:**
• Large Cap: Low risk, stable returns
• Mid Cap: Medium risk, better returns
• Small Cap: High risk, high returns

💡 **Tax Benefits:**
• ELSS: 3-year lock-in, 80C deduction
• Equity funds: 10% LTCG after 1 year

⚠️ **Risk:** Mutual fund investments are subject to market risks.`,
	},
	IntentTrading: {
		Hindi:   `📈 **शेयर ट्रेडिंग जानकारी**

🕘 **मार्केट टाइमिंग:**
• सुबह 9:15 - दोपहर 3:30 (नियमित)
• सुबह 9:00-9:15 (प्री-मार्केट)

💰 **ट्रेडिंग कॉस्ट:**
• ब्रोकरेज: ₹0-20 प्रति ट्रेड
• STT: 0.1% (सेल साइड)
• कुल कॉस्ट: ~0.5% राउंड ट्रिप

📊 **आज के इंडेक्स:**
• निफ्टी 50: 19,850 (+0.5%)
• सेंसेक्स: 66,500 (+0.3%)

⚡ **तुरंत ट्रेड करने के लिए WhatsApp पर "BUY RELIANCE 100" भेजें**`,
		English: `📈 **Stock Trading Information**

🕘 **Market Timings:**
• 9:15 AM - 3:30 PM (Regular)
• 9:00-9:15 AM (Pre-market)

💰 **Trading Costs:**
• Brokerage: ₹0-20 per trade
• STT: 0.1% (sell side)
• Total: ~0.5% round trip

📊 **Today's Indices:**
• Nifty 50: 19,850 (+0.5%)
• Sensex: 66,500 (+0.3%)

⚡ **Trade instantly via WhatsApp: "BUY RELIANCE 100"**`,
	},
	IntentTax: {
		Hindi:   `💰 **टैक्स सेविंग गाइड (FY 2024-25)**

🎯 **सेक्शन 80C (₹1.5 लाख तक):**
• PPF: 15 साल लॉक-इन, 7.1% रिटर्न
• ELSS: 3 साल लॉक-इन, मार्केट रिटर्न
• NSC: 5 साल लॉक-इन, 6.8% रिटर्न
• होम लोन प्रिंसिपल

📊 **अन्य छूट:**
• 80D: हेल्थ इंश्योरेंस ₹25,000-50,000
• 80E: एजुकेशन लोन इंटरेस्ट (कोई लिमिट नहीं)

💡 **कैपिटल गेन्स टैक्स:**
• इक्विटी LTCG: 10% (₹1 लाख के बाद)
• डेट LTCG: 20% (इंडेक्सेशन के साथ)`,
		English: `💰 **Tax Saving Guide (FY 2024-25)**

🎯 **Section 80C (Up to ₹1.5 lakh):**
• PPF: 15-year lock-in, 7.1% return
• ELSS: 3-year lock-in, market returns
• NSC: 5-year lock-in, 6.8% return
• Home loan principal

📊 **Other Deductions:**
• 80D: Health insurance ₹25,000-50,000
• 80E: Education loan interest (no limit)

💡 **Capital Gains Tax:**
• Equity LTCG: 10% (above ₹1 lakh)
• Debt LTCG: 20% (with indexation)`,
	},
	IntentAccount: {
		Hindi:   `🏦 **खाता सहायता**

आपके खाते से जुड़ा प्रश्न "{query}" हमें मिल गया है।

🔐 **सुरक्षित जानकारी:**
• बैलेंस और स्टेटमेंट केवल रजिस्टर्ड मोबाइल नंबर पर
• नेट बैंकिंग या मोबाइल ऐप में लॉगिन करें
• OTP या PIN कभी किसी से साझा न करें

📱 **तुरंत बैलेंस जानें:**
• WhatsApp पर "BALANCE" भेजें
• मिस्ड कॉल बैंकिंग सेवा का उपयोग करें

⚠️ **सावधान:** हमारी टीम कभी भी आपका पासवर्ड नहीं माँगेगी।`,
		English: `🏦 **Account Assistance**

We have received your account question: "{query}".

🔐 **Secure Access:**
• Balance and statements only on your registered mobile number
• Log in to net banking or the mobile app
• Never share your OTP or PIN with anyone

📱 **Check Balance Instantly:**
• Send "BALANCE" on WhatsApp
• Use the missed call banking service

⚠️ **Caution:** Our team will never ask for your password.`,
	},
	IntentGeneral: {
		Hindi:   `नमस्ते! आपका प्रश्न "{query}" के लिए हमारी विशेषज्ञ टीम तैयार है।

🏦 **हमारी सेवाएं:**
• शेयर ट्रेडिंग सहायता
• म्यूचुअल फंड सलाह
• टैक्स प्लानिंग
• इंश्योरेंस गाइडेंस

💬 **तुरंत सहायता के लिए:**
• WhatsApp: +91-XXXXXXXXX
• विशेषज्ञ कॉल: 60 सेकंड में
• 24x7 AI सहायता उपलब्ध

आपकी और कोई सहायता चाहिए?`,
		English: `Hello! Our expert team is ready to help with "{query}".

🏦 **Our Services:**
• Stock trading assistance
• Mutual fund advice
• Tax planning
• Insurance guidance

💬 **Instant Support:**
• WhatsApp: +91-XXXXXXXXX
• Expert call: Within 60 seconds
• 24x7 AI assistance available

How else can we help you?`,
	},
}

// fallbackText is returned by the support endpoint when processing fails.
// It carries a "{query}" placeholder.
const fallbackText = "आपका प्रश्न समझ में आया। {query} के लिए हमारी सहायता टीम आपसे जल्द संपर्क करेगी।"

// MaintenanceText is returned alongside market analysis failures.
const MaintenanceText = "हमारी तकनीकी टीम इस समस्या को ठीक कर रही है। कृपया बाद में कोशिश करें।"
