package graphql

// Operation documents for the remote FinanZ schema. Field selections mirror
// what the screens render; list-valued root queries are always fetched in
// full (the cache replaces them wholly on write).

const (
	OpLogin                 = "Login"
	OpMe                    = "Me"
	OpSummary               = "Summary"
	OpGetSavingDepots       = "GetSavingDepots"
	OpCreateSavingDepot     = "CreateSavingDepot"
	OpUpdateSavingDepot     = "UpdateSavingDepot"
	OpDeleteSavingDepot     = "DeleteSavingDepot"
	OpCreateSavingTx        = "CreateSavingTransaction"
	OpDeleteSavingTx        = "DeleteSavingTransaction"
	OpGetExpenses           = "GetExpenses"
	OpCreateExpense         = "CreateExpense"
	OpUpdateExpense         = "UpdateExpense"
	OpDeleteExpense         = "DeleteExpense"
	OpCreateExpenseTx       = "CreateExpenseTransaction"
	OpDeleteExpenseTx       = "DeleteExpenseTransaction"
	OpGetExpenseCategories  = "GetExpenseCategories"
	OpCreateExpenseCategory = "CreateExpenseCategory"
	OpDeleteExpenseCategory = "DeleteExpenseCategory"
	OpGetTemplates          = "GetExpenseTransactionTemplates"
	OpCreateTemplate        = "CreateExpenseTransactionTemplate"
	OpDeleteTemplate        = "DeleteExpenseTransactionTemplate"
)

const QueryLogin = `mutation Login($username: String!, $password: String!) {
  login(username: $username, password: $password) {
    token
  }
}`

const QueryMe = `query Me {
  me {
    id
    username
    email
  }
}`

const QuerySummary = `query Summary {
  summary {
    savingSum
    expenseTotal
    spendToday
    netWorth
  }
}`

const QueryGetSavingDepots = `query GetSavingDepots {
  getSavingDepots {
    id
    name
    short
    currency
    savinggoal
    sum
    transactions {
      id
      amount
      describtion
      createdAt
    }
  }
}`

const QueryCreateSavingDepot = `mutation CreateSavingDepot($name: String!, $short: String!, $currency: String, $savinggoal: Float) {
  createSavingDepot(name: $name, short: $short, currency: $currency, savinggoal: $savinggoal) {
    id
    name
    short
    currency
    savinggoal
    sum
    transactions {
      id
      amount
      describtion
      createdAt
    }
  }
}`

const QueryUpdateSavingDepot = `mutation UpdateSavingDepot($id: ID!, $name: String, $short: String, $currency: String, $savinggoal: Float) {
  updateSavingDepot(id: $id, name: $name, short: $short, currency: $currency, savinggoal: $savinggoal) {
    id
    name
    short
    currency
    savinggoal
    sum
  }
}`

const QueryDeleteSavingDepot = `mutation DeleteSavingDepot($id: ID!) {
  deleteSavingDepot(id: $id)
}`

const QueryCreateSavingTransaction = `mutation CreateSavingTransaction($depotId: ID!, $amount: Float!, $describtion: String!) {
  createSavingTransaction(depotId: $depotId, amount: $amount, describtion: $describtion) {
    id
    amount
    describtion
    createdAt
  }
}`

const QueryDeleteSavingTransaction = `mutation DeleteSavingTransaction($id: ID!) {
  deleteSavingTransaction(id: $id)
}`

const QueryGetExpenses = `query GetExpenses($archived: Boolean) {
  getExpenses(archived: $archived) {
    id
    title
    currency
    archived
    monthlyRecurring
    spendingLimit
    sum
    transactions {
      id
      amount
      describtion
      createdAt
      category {
        id
        name
        color
        icon
      }
    }
    expenseByCategory {
      category {
        id
        name
        color
        icon
      }
      sum
    }
  }
}`

const QueryCreateExpense = `mutation CreateExpense($title: String!, $currency: String, $monthlyRecurring: Boolean, $spendingLimit: Float) {
  createExpense(title: $title, currency: $currency, monthlyRecurring: $monthlyRecurring, spendingLimit: $spendingLimit) {
    id
    title
    currency
    archived
    monthlyRecurring
    spendingLimit
    sum
    transactions {
      id
      amount
      describtion
      createdAt
    }
  }
}`

const QueryUpdateExpense = `mutation UpdateExpense($id: ID!, $title: String, $currency: String, $archived: Boolean, $monthlyRecurring: Boolean, $spendingLimit: Float) {
  updateExpense(id: $id, title: $title, currency: $currency, archived: $archived, monthlyRecurring: $monthlyRecurring, spendingLimit: $spendingLimit) {
    id
    title
    currency
    archived
    monthlyRecurring
    spendingLimit
    sum
  }
}`

const QueryDeleteExpense = `mutation DeleteExpense($id: ID!) {
  deleteExpense(id: $id)
}`

const QueryCreateExpenseTransaction = `mutation CreateExpenseTransaction($expenseId: ID!, $amount: Float!, $describtion: String!, $categoryId: ID, $attachment: Upload) {
  createExpenseTransaction(expenseId: $expenseId, amount: $amount, describtion: $describtion, categoryId: $categoryId, attachment: $attachment) {
    id
    amount
    describtion
    createdAt
    category {
      id
      name
      color
      icon
    }
  }
}`

const QueryDeleteExpenseTransaction = `mutation DeleteExpenseTransaction($id: ID!) {
  deleteExpenseTransaction(id: $id)
}`

const QueryGetExpenseCategories = `query GetExpenseCategories {
  getExpenseCategories {
    id
    name
    color
    icon
  }
}`

const QueryCreateExpenseCategory = `mutation CreateExpenseCategory($name: String!, $color: String, $icon: String) {
  createExpenseCategory(name: $name, color: $color, icon: $icon) {
    id
    name
    color
    icon
  }
}`

const QueryDeleteExpenseCategory = `mutation DeleteExpenseCategory($id: ID!) {
  deleteExpenseCategory(id: $id)
}`

const QueryGetTemplates = `query GetExpenseTransactionTemplates {
  getExpenseTransactionTemplates {
    id
    describtion
    amount
    category {
      id
      name
      color
      icon
    }
  }
}`

const QueryCreateTemplate = `mutation CreateExpenseTransactionTemplate($describtion: String!, $amount: Float!, $categoryId: ID) {
  createExpenseTransactionTemplate(describtion: $describtion, amount: $amount, categoryId: $categoryId) {
    id
    describtion
    amount
    category {
      id
      name
      color
      icon
    }
  }
}`

const QueryDeleteTemplate = `mutation DeleteExpenseTransactionTemplate($id: ID!) {
  deleteExpenseTransactionTemplate(id: $id)
}`
